package iteratable

import (
	"testing"
)

func TestSetInsertionOrder(t *testing.T) {
	S := NewSet(0)
	if !S.Add("c") || !S.Add("a") || !S.Add("b") {
		t.Errorf("adding fresh elements should mutate the set")
	}
	if S.Add("a") {
		t.Errorf("adding a duplicate should not mutate the set")
	}
	want := []string{"c", "a", "b"}
	for i, v := range S.Values() {
		if v.(string) != want[i] {
			t.Errorf("expected element #%d to be %s, is %s", i, want[i], v)
		}
	}
	if S.IndexOf("a") != 1 {
		t.Errorf("expected index of 'a' to be 1, is %d", S.IndexOf("a"))
	}
}

func TestSetExtend(t *testing.T) {
	S := NewSet(0)
	S.Add(1)
	if !S.Extend(2, 1, 3) {
		t.Errorf("extend with fresh elements should report mutation")
	}
	if S.Extend(1, 2) {
		t.Errorf("extend with known elements should not report mutation")
	}
	if S.Size() != 3 {
		t.Errorf("expected set of size 3, is %d", S.Size())
	}
}

func TestSetCompoundElements(t *testing.T) {
	inner1 := NewSet(0)
	inner1.Extend("x", "y")
	inner2 := NewSet(0) // same members, different insertion order
	inner2.Extend("y", "x")
	S := NewSet(0)
	S.Add(inner1)
	if !S.Contains(inner2) {
		t.Errorf("membership should use value equality, not identity")
	}
	if S.Add(inner2) {
		t.Errorf("adding a value-equal set should not mutate")
	}
}

func TestSetEquality(t *testing.T) {
	A := NewSet(0)
	A.Extend(1, 2, 3)
	B := NewSet(0)
	B.Extend(3, 1, 2)
	if !A.Equals(B) {
		t.Errorf("set equality should ignore insertion order")
	}
	B.Add(4)
	if A.Equals(B) {
		t.Errorf("sets of different size cannot be equal")
	}
}

func TestSetIterationToleratesAppends(t *testing.T) {
	S := NewSet(0)
	S.Add(1)
	var visited []int
	S.IterateOnce()
	for S.Next() {
		n := S.Item().(int)
		visited = append(visited, n)
		if n < 4 {
			S.Add(n + 1)
		}
	}
	if len(visited) != 4 {
		t.Errorf("expected iteration to pick up appended elements, visited %v", visited)
	}
}

func TestSetDifference(t *testing.T) {
	A := NewSet(0)
	A.Extend(1, 2, 3)
	B := NewSet(0)
	B.Extend(2)
	D := A.Difference(B)
	if D.Size() != 2 || !D.Contains(1) || !D.Contains(3) {
		t.Errorf("unexpected difference %v", D)
	}
}
