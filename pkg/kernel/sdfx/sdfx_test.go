package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// coarse keeps marching cubes fast in tests.
func coarse() *SdfxKernel {
	return New(WithMeshCells(48))
}

func TestBox(t *testing.T) {
	k := coarse()
	box, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoxIsCentered(t *testing.T) {
	k := New()
	box, err := k.Box(100, 50, 20)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	min, max := box.BoundingBox()
	want := [3]float64{50, 25, 10}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]+want[i]) > 1e-9 || math.Abs(max[i]-want[i]) > 1e-9 {
			t.Fatalf("bounding box = %v..%v, want ±%v", min, max, want)
		}
	}
	if !box.Contains([3]float64{0, 0, 0}) {
		t.Error("origin should be inside a centered box")
	}
	if box.Contains([3]float64{60, 0, 0}) {
		t.Error("point beyond +X face should be outside")
	}
}

func TestBoxRejectsNonPositive(t *testing.T) {
	k := New()
	for _, size := range [][3]float64{{0, 1, 1}, {1, -1, 1}, {1, 1, math.NaN()}} {
		if _, err := k.Box(size[0], size[1], size[2]); err == nil {
			t.Errorf("Box(%v) should fail", size)
		}
	}
}

func TestDifference(t *testing.T) {
	k := coarse()

	box, _ := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	slot, _ := k.Box(20, 40, 100)
	slot = k.Translate(slot, 0, 30, 0)
	diff, err := k.Difference(box, slot)
	if err != nil {
		t.Fatalf("Difference failed: %v", err)
	}
	if diff.Contains([3]float64{0, 40, 0}) {
		t.Error("slot interior should be removed")
	}
	if !diff.Contains([3]float64{30, 40, 0}) {
		t.Error("material beside the slot should remain")
	}

	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	// A notched box should have more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

type foreignSolid struct{}

func (foreignSolid) BoundingBox() (min, max [3]float64) { return min, max }
func (foreignSolid) Contains([3]float64) bool            { return false }

func TestDifferenceRejectsForeignSolid(t *testing.T) {
	k := New()
	box, _ := k.Box(1, 1, 1)
	if _, err := k.Difference(box, foreignSolid{}); err == nil {
		t.Fatal("expected error for a solid from another kernel")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box, _ := k.Box(10, 10, 10)
	moved := k.Translate(box, 100, 0, 0)

	min, max := moved.BoundingBox()
	if math.Abs(min[0]-95) > 0.01 || math.Abs(max[0]-105) > 0.01 {
		t.Fatalf("translated X range = [%f, %f], want [95, 105]", min[0], max[0])
	}
}

func TestRotate(t *testing.T) {
	k := New()
	box, _ := k.Box(100, 10, 10)
	rotated := k.Rotate(box, 0, 0, 90)

	min, max := rotated.BoundingBox()
	// After 90 degree rotation around Z, the long axis moves to Y.
	if math.Abs((max[1]-min[1])-100) > 0.5 {
		t.Fatalf("rotated Y extent = %f, want ~100", max[1]-min[1])
	}
	if math.Abs((max[0]-min[0])-10) > 0.5 {
		t.Fatalf("rotated X extent = %f, want ~10", max[0]-min[0])
	}
}

func TestExportSTL(t *testing.T) {
	k := coarse()
	box, _ := k.Box(30, 20, 10)
	path := filepath.Join(t.TempDir(), "box.stl")
	if err := k.ExportSTL(box, path); err != nil {
		t.Fatalf("ExportSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// Binary STL: 80 byte header + 4 byte count + 50 bytes per triangle.
	if info.Size() <= 84 {
		t.Fatalf("STL file is only %d bytes", info.Size())
	}
}
