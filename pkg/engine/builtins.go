package engine

import (
	"errors"
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/joint"
	"github.com/chazu/boxjoint/pkg/project"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites a design script into something zygomys
// accepts. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: finger-joint -> finger_joint
//     zygomys reads a hyphen inside an identifier as subtraction, so
//     kebab-case identifiers are rewritten outside strings and comments.
//
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Values passed between builtins
// ---------------------------------------------------------------------------

// sexpBoardRef names a board created by `board`.
type sexpBoardRef struct {
	id string
}

func (r *sexpBoardRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", r.id)
}
func (r *sexpBoardRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a board.Vec3.
type sexpVec3 struct {
	vec board.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword is only paired with a value when the next argument is not itself
// a keyword, so (select ref :top) treats :top as positional.
func parseArgs(args []zygo.Sexp, valued ...string) kwArgs {
	takes := make(map[string]bool, len(valued))
	for _, v := range valued {
		takes[v] = true
	}
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok || !takes[name] {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_top) and plain strings ("top").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toSide converts a keyword or string to a joint.Side.
func toSide(s zygo.Sexp) (joint.Side, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected side keyword: %w", err)
	}
	return joint.ParseSide(name)
}

// toBoardRef extracts a board ID from a reference or a plain string.
func toBoardRef(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpBoardRef:
		return v.id, nil
	case *zygo.SexpStr:
		return v.S, nil
	}
	return "", fmt.Errorf("expected part reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (board.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return board.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toWidths accepts a list of numbers or a comma separated string.
func toWidths(s zygo.Sexp) ([]float64, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return joint.ParseGeometryList(str.S)
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// fromWidths builds a Lisp list of floats.
func fromWidths(ws []float64) zygo.Sexp {
	items := make([]zygo.Sexp, len(ws))
	for i, w := range ws {
		items[i] = &zygo.SexpFloat{Val: w}
	}
	return zygo.MakeList(items)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the DSL builtins into env. They record boards,
// joints and the selection into b as the script runs.
//
// Source must go through preprocessSource first so that :keyword tokens
// are recognizable and kebab-case names match the registered ones.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (board "front" :width 100 :height 50 :thickness 20
	//        :position (vec3 0 0 0) :rotation (vec3 0 90 0)
	//        :wood "walnut" :grain "horizontal" :name "Front")
	// -----------------------------------------------------------------------
	env.AddFunction("board", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args, "width", "height", "thickness", "position", "rotation", "wood", "grain", "name")

		id := ""
		if len(pa.positional) > 0 {
			s, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("board: id: %w", err)
			}
			id = s
		}

		var dims board.Dimensions
		for _, field := range []struct {
			key string
			dst *float64
		}{
			{"width", &dims.Width},
			{"height", &dims.Height},
			{"thickness", &dims.Thickness},
		} {
			v, ok := pa.kw[field.key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("board: missing :%s", field.key)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("board: %s: %w", field.key, err)
			}
			*field.dst = f
		}
		if err := dims.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("board: %w", err)
		}

		var bd board.Board
		if id == "" {
			bd = board.New(dims)
		} else {
			bd = board.NewWithID(id, dims)
		}

		var pos, rot board.Vec3
		if v, ok := pa.kw["position"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("board: position: %w", err)
			}
			pos = vec
		}
		if v, ok := pa.kw["rotation"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("board: rotation: %w", err)
			}
			rot = vec
		}
		bd = bd.WithPose(pos, rot)

		for key, dst := range map[string]*string{
			"wood":  &bd.WoodType,
			"grain": &bd.GrainDirection,
			"name":  &bd.DisplayName,
		} {
			if v, ok := pa.kw[key]; ok {
				s, err := toString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("board: %s: %w", key, err)
				}
				*dst = s
			}
		}

		if err := b.add(bd); err != nil {
			return zygo.SexpNull, fmt.Errorf("board: %w", err)
		}
		return &sexpBoardRef{id: bd.ID}, nil
	})

	// -----------------------------------------------------------------------
	// (part "front")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		id, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		if _, ok := b.get(id); !ok {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", id)
		}
		return &sexpBoardRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: board.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (finger-joint (part "front") :top :finger-width 11 :count 5
	//               :center-keyed false :depth 10)
	//
	// Registered as "finger_joint"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("finger_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args, "finger-width", "count", "center-keyed", "depth")
		id, side, err := jointTarget("finger-joint", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		v, ok := pa.kw["finger-width"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("finger-joint: missing :finger-width")
		}
		width, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("finger-joint: finger-width: %w", err)
		}
		v, ok = pa.kw["count"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("finger-joint: missing :count")
		}
		count, err := toInt(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("finger-joint: count: %w", err)
		}
		keyed := false
		if v, ok := pa.kw["center-keyed"]; ok {
			if keyed, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("finger-joint: center-keyed: %w", err)
			}
		}

		cfg := joint.NewFixed(side, width, count, keyed)
		if cfg, err = withDepth(cfg, pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("finger-joint: %w", err)
		}
		if err := b.setJoint(id, cfg); err != nil {
			return zygo.SexpNull, fmt.Errorf("finger-joint: %w", err)
		}
		return &sexpBoardRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (variable-joint (part "front") :left :start 1 :geometry (list 10 20 20)
	//                 :depth 10)
	//
	// :geometry also accepts a comma separated string.
	// -----------------------------------------------------------------------
	env.AddFunction("variable_joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args, "start", "geometry", "depth")
		id, side, err := jointTarget("variable-joint", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		start := 0
		if v, ok := pa.kw["start"]; ok {
			if start, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("variable-joint: start: %w", err)
			}
			if start != 0 && start != 1 {
				return zygo.SexpNull, fmt.Errorf("variable-joint: start must be 0 or 1, got %d", start)
			}
		}
		v, ok := pa.kw["geometry"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("variable-joint: missing :geometry")
		}
		geometry, err := toWidths(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("variable-joint: geometry: %w", err)
		}

		cfg := joint.NewVariable(side, start, geometry)
		if cfg, err = withDepth(cfg, pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("variable-joint: %w", err)
		}
		if err := b.setJoint(id, cfg); err != nil {
			return zygo.SexpNull, fmt.Errorf("variable-joint: %w", err)
		}
		return &sexpBoardRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (even 100 5) => five widths of 20
	// -----------------------------------------------------------------------
	env.AddFunction("even", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("even requires a length and a count")
		}
		length, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("even: length: %w", err)
		}
		count, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("even: count: %w", err)
		}
		return fromWidths(joint.DistributeEvenly(length, count)), nil
	})

	// -----------------------------------------------------------------------
	// (mirror (list 10 20)) => (10 20 20 10)
	// -----------------------------------------------------------------------
	env.AddFunction("mirror", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("mirror requires one list")
		}
		ws, err := toWidths(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mirror: %w", err)
		}
		return fromWidths(joint.MirrorPattern(ws)), nil
	})

	// -----------------------------------------------------------------------
	// (select (part "front") :top)
	// -----------------------------------------------------------------------
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("select requires a part and an optional side")
		}
		id, err := toBoardRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		var side joint.Side
		if len(args) == 2 {
			if side, err = toSide(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("select: %w", err)
			}
		}
		if err := b.selectBoard(id, side); err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		return &sexpBoardRef{id: id}, nil
	})
}

// jointTarget reads the leading (part ...) and :side positionals shared by
// the joint builtins.
func jointTarget(fn string, pa kwArgs) (string, joint.Side, error) {
	if len(pa.positional) != 2 {
		return "", "", fmt.Errorf("%s requires a part and a side", fn)
	}
	id, err := toBoardRef(pa.positional[0])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", fn, err)
	}
	side, err := toSide(pa.positional[1])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", fn, err)
	}
	return id, side, nil
}

func withDepth(cfg joint.JointConfig, pa kwArgs) (joint.JointConfig, error) {
	v, ok := pa.kw["depth"]
	if !ok {
		return cfg, nil
	}
	d, err := toFloat64(v)
	if err != nil {
		return cfg, fmt.Errorf("depth: %w", err)
	}
	return cfg.WithGrooveDepth(&d), nil
}

// ---------------------------------------------------------------------------
// Project assembly
// ---------------------------------------------------------------------------

// builder accumulates the project a script describes.
type builder struct {
	boards   []board.Board
	index    map[string]int
	selected string
	side     joint.Side
}

func newBuilder() *builder {
	return &builder{index: make(map[string]int)}
}

func (b *builder) add(bd board.Board) error {
	if _, dup := b.index[bd.ID]; dup {
		return fmt.Errorf("duplicate part %q", bd.ID)
	}
	b.index[bd.ID] = len(b.boards)
	b.boards = append(b.boards, bd)
	return nil
}

func (b *builder) get(id string) (board.Board, bool) {
	i, ok := b.index[id]
	if !ok {
		return board.Board{}, false
	}
	return b.boards[i], true
}

func (b *builder) setJoint(id string, cfg joint.JointConfig) error {
	i, ok := b.index[id]
	if !ok {
		return fmt.Errorf("no part named %q", id)
	}
	bd, err := b.boards[i].WithJoint(cfg)
	if err != nil {
		return err
	}
	b.boards[i] = bd
	return nil
}

func (b *builder) selectBoard(id string, side joint.Side) error {
	if _, ok := b.index[id]; !ok {
		return fmt.Errorf("no part named %q", id)
	}
	b.selected = id
	b.side = side
	return nil
}

func (b *builder) project() project.Project {
	return project.Project{
		Boards:          append([]board.Board(nil), b.boards...),
		SelectedBoardID: b.selected,
		SelectedSide:    b.side,
	}
}

// CheckJoints validates every joint in p and reports the failures as
// warnings, carrying the suggested finger width when there is one.
func CheckJoints(p project.Project) []EvalWarning {
	var out []EvalWarning
	for _, bd := range p.Boards {
		for _, err := range bd.ValidateJoints() {
			w := EvalWarning{BoardID: bd.ID, Message: err.Error()}
			var ve *joint.ValidationError
			if errors.As(err, &ve) {
				w.Side = ve.Side
				w.SuggestedWidth = ve.SuggestedWidth
			}
			out = append(out, w)
		}
	}
	return out
}
