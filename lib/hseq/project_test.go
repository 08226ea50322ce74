package hseq

import (
	"reflect"
	"testing"
)

func TestShapeProject(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  []int
	}{
		{
			name:  "empty shape",
			shape: Shape{},
			want:  []int{},
		},
		{
			name:  "all void",
			shape: Shape{KindVoid, KindVoid, KindVoid},
			want:  []int{},
		},
		{
			name:  "no void",
			shape: Shape{KindBytes, KindBool, KindInt},
			want:  []int{0, 1, 2},
		},
		{
			name:  "mixed",
			shape: Shape{KindVoid, KindVoid, KindBytes, KindVoid, KindVoid, KindBytes},
			want:  []int{2, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.Project()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShapeProjectMemoized(t *testing.T) {
	shape := Shape{KindVoid, KindBytes, KindVoid}

	first := shape.Project()
	second := Shape{KindVoid, KindBytes, KindVoid}.Project()

	// Equal shapes must resolve to the same cached index set.
	if !reflect.DeepEqual(first, second) {
		t.Errorf("memoized projection differs: %v vs %v", first, second)
	}
}

func TestSeqProjectPreservesOrder(t *testing.T) {
	shape := Shape{KindVoid, KindBytes, KindVoid, KindBool, KindInt, KindVoid}
	seq, err := NewSeq(shape, []Value{
		Void(),
		Bytes([]byte("first"), true),
		Void(),
		Bool(true),
		Int(3),
		Void(),
	})
	if err != nil {
		t.Fatalf("NewSeq() failed: %v", err)
	}

	filtered := seq.Project()

	if filtered.Len() != 3 {
		t.Fatalf("projected Len() = %d, want 3", filtered.Len())
	}
	if b, ok := filtered.At(0).Bytes(); !ok || string(b) != "first" {
		t.Errorf("projected At(0) = %s, want some(first)", filtered.At(0))
	}
	if !filtered.At(1).Bool() {
		t.Errorf("projected At(1) = %s, want true", filtered.At(1))
	}
	if filtered.At(2).Int() != 3 {
		t.Errorf("projected At(2) = %s, want 3", filtered.At(2))
	}
}

func TestSeqProjectAllVoid(t *testing.T) {
	shape := Shape{KindVoid, KindVoid}
	seq, err := NewSeq(shape, []Value{Void(), Void()})
	if err != nil {
		t.Fatalf("NewSeq() failed: %v", err)
	}

	if filtered := seq.Project(); filtered.Len() != 0 {
		t.Errorf("all-void projection Len() = %d, want 0", filtered.Len())
	}
}

func TestSeqProjectEmpty(t *testing.T) {
	seq, err := NewSeq(Shape{}, []Value{})
	if err != nil {
		t.Fatalf("NewSeq() failed: %v", err)
	}

	if filtered := seq.Project(); filtered.Len() != 0 {
		t.Errorf("empty projection Len() = %d, want 0", filtered.Len())
	}
}
