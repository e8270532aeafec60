package types

import (
	"encoding/json"
	"testing"
)

func TestValue_Accessors(t *testing.T) {
	if n, ok := Number(2.5).AsNumber(); !ok || n != 2.5 {
		t.Errorf("AsNumber = %v, %v", n, ok)
	}
	if _, ok := Text("x").AsNumber(); ok {
		t.Error("text should not read as number")
	}
	if s, ok := Text("x").AsText(); !ok || s != "x" {
		t.Errorf("AsText = %q, %v", s, ok)
	}
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Errorf("AsBool = %v, %v", b, ok)
	}
	if l, ok := List(Number(1), Text("a")).AsList(); !ok || len(l) != 2 {
		t.Errorf("AsList = %v, %v", l, ok)
	}
	if !Null().IsNull() {
		t.Error("Null should be null")
	}
}

func TestValue_AsUint(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want uint64
		ok   bool
	}{
		{"integer", Number(200), 200, true},
		{"zero", Number(0), 0, true},
		{"fraction", Number(1.5), 0, false},
		{"negative", Number(-1), 0, false},
		{"text", Text("200"), 0, false},
		{"huge", Number(1e20), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.AsUint()
			if ok != tt.ok || got != tt.want {
				t.Errorf("AsUint() = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(30), "30"},
		{Number(0.25), "0.25"},
		{Text("hi"), "hi"},
		{Bool(false), "false"},
		{Null(), "null"},
		{List(Number(1), Text("b")), "1,b"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValue_JSON(t *testing.T) {
	vs, err := ParseValues(`["0xabc", 200, true, null, [1, "x"]]`)
	if err != nil {
		t.Fatalf("ParseValues: %v", err)
	}
	want := []Value{Text("0xabc"), Number(200), Bool(true), Null(), List(Number(1), Text("x"))}
	if len(vs) != len(want) {
		t.Fatalf("len = %d, want %d", len(vs), len(want))
	}
	for i := range want {
		if !vs[i].Equal(want[i]) {
			t.Errorf("value %d = %v, want %v", i, vs[i], want[i])
		}
	}

	out, err := json.Marshal(vs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `["0xabc",200,true,null,[1,"x"]]` {
		t.Errorf("Marshal = %s", out)
	}

	if _, err := ParseValues(`[{"a":1}]`); err == nil {
		t.Error("objects should be rejected")
	}
	if vs, err := ParseValues("  "); err != nil || vs != nil {
		t.Errorf("blank input = %v, %v; want nil, nil", vs, err)
	}
}

func TestValue_CloneIndependent(t *testing.T) {
	orig := List(Number(1), List(Text("a")))
	c := orig.Clone()
	c.List[1].List[0] = Text("changed")
	if orig.List[1].List[0].Str != "a" {
		t.Error("Clone should deep-copy nested lists")
	}
}
