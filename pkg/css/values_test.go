package css

import "testing"

func TestParseContent_Keywords(t *testing.T) {
	if c := ParseContent("normal"); !c.IsNormal() || c.HasItems() {
		t.Errorf("expected normal, got %+v", c)
	}
	if c := ParseContent(" NONE "); !c.IsNone() {
		t.Errorf("expected none, got %+v", c)
	}
	if c := NewStyle().GetContent(); !c.IsNormal() {
		t.Errorf("unset content should be normal, got %+v", c)
	}
}

func TestParseContent_Items(t *testing.T) {
	c := ParseContent(`"Chapter " counter(chapter, upper-roman) ". " attr(title) open-quote url(x.png)`)
	if !c.HasItems() {
		t.Fatal("expected items")
	}
	want := []struct {
		kind ValueKind
		text string
	}{
		{StringValue, "Chapter "},
		{FunctionValue, "counter"},
		{StringValue, ". "},
		{FunctionValue, "attr"},
		{IdentValue, "open-quote"},
		{URLValue, "x.png"},
	}
	if len(c.Items) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(c.Items), c.Items)
	}
	for i, w := range want {
		if c.Items[i].Kind != w.kind || c.Items[i].Text != w.text {
			t.Errorf("item %d: got %s %q, want %s %q", i, c.Items[i].Kind, c.Items[i].Text, w.kind, w.text)
		}
	}
	fn := c.Items[1].Func
	if len(fn.Args) != 2 || fn.Args[0].Text != "chapter" || fn.Args[1].Text != "upper-roman" || fn.Malformed {
		t.Errorf("unexpected counter args %+v", fn)
	}
}

func TestParseContent_NestedAndMalformedFunctions(t *testing.T) {
	c := ParseContent(`target-counter(attr(href), page) counter() counters(a b, ".")`)
	if len(c.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(c.Items))
	}
	tc := c.Items[0].Func
	if tc.Name != "target-counter" || len(tc.Args) != 2 || tc.Args[0].Kind != FunctionValue || tc.Args[0].Func.Name != "attr" {
		t.Errorf("unexpected nested function %+v", tc)
	}
	if empty := c.Items[1].Func; len(empty.Args) != 0 || empty.Malformed {
		t.Errorf("counter() should have no args and not be malformed: %+v", empty)
	}
	if bad := c.Items[2].Func; !bad.Malformed {
		t.Errorf("counters(a b, \".\") should be malformed: %+v", bad)
	}
}

func TestUnescapeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"plain"`, "plain"},
		{`'single'`, "single"},
		{`"\201C"`, "“"},
		{`"\201C x"`, "“x"},
		{`"a\"b"`, `a"b`},
		{`"\A"`, "\n"},
		{`"back\\slash"`, `back\slash`},
	}
	for _, tt := range tests {
		if got := unescapeString(tt.in); got != tt.want {
			t.Errorf("unescapeString(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetQuotes(t *testing.T) {
	s := NewStyle()
	pairs, none := s.GetQuotes()
	if none || len(pairs) != 2 || pairs[0].Open != "“" {
		t.Errorf("expected default quotes, got %v %v", pairs, none)
	}

	s.Set("quotes", `"<" ">" "[" "]"`)
	pairs, _ = s.GetQuotes()
	if len(pairs) != 2 || pairs[1] != (QuotePair{"[", "]"}) {
		t.Errorf("unexpected pairs %v", pairs)
	}

	s.Set("quotes", "none")
	if _, none := s.GetQuotes(); !none {
		t.Error("expected quotes: none")
	}
}

func TestCounterLists(t *testing.T) {
	s := NewStyle()
	s.Set("counter-reset", "chapter section 3")
	s.Set("counter-increment", "section -2 figure")

	resets := s.GetCounterResets()
	if len(resets) != 2 || resets[0] != (CounterChange{"chapter", 0}) || resets[1] != (CounterChange{"section", 3}) {
		t.Errorf("unexpected resets %v", resets)
	}
	incs := s.GetCounterIncrements()
	if len(incs) != 2 || incs[0] != (CounterChange{"section", -2}) || incs[1] != (CounterChange{"figure", 1}) {
		t.Errorf("unexpected increments %v", incs)
	}

	s.Set("counter-increment", "none")
	s.Set("counter-reset", "none")
	if s.HasCounterDeclarations() {
		t.Error("none should declare no counters")
	}
}
