package params

import "testing"

func TestQuorumAndSplitLimit(t *testing.T) {
	p := Defaults()
	if got := p.Quorum(); got != 5 {
		t.Fatalf("expected quorum=5 for group_size=8, got %d", got)
	}
	if got := p.SplitLimit(); got != 11 {
		t.Fatalf("expected split_limit=11 for group_size=8, got %d", got)
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("default params should validate: %v", err)
	}
}

func TestValidateRejectsBadInputs(t *testing.T) {
	cases := []func(*Params){
		func(p *Params) { p.NumIterations = 0 },
		func(p *Params) { p.GroupSize = 0 },
		func(p *Params) { p.AdultAge = 0 },
		func(p *Params) { p.InitAge = 0 },
		func(p *Params) { p.MaxSectionSize = 0 },
		func(p *Params) { p.MaxRelocationAttempts = 0 },
		func(p *Params) { p.RelocationStrategy = "sideways" },
	}
	for i, mutate := range cases {
		p := Defaults()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestRelocationStrategyUnmarshalYAML(t *testing.T) {
	var s RelocationStrategy
	err := s.UnmarshalYAML(func(out interface{}) error {
		*(out.(*string)) = "oldest-first"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if s != OldestFirst {
		t.Fatalf("expected OldestFirst, got %v", s)
	}

	err = s.UnmarshalYAML(func(out interface{}) error {
		*(out.(*string)) = "bogus"
		return nil
	})
	if err == nil {
		t.Fatal("expected error for unrecognized strategy")
	}
}
