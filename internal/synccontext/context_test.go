package synccontext

import "testing"

func TestDefault(t *testing.T) {
	c := Default()
	if c.ModuleName != "init" {
		t.Errorf("ModuleName = %q, want init", c.ModuleName)
	}
}

func TestWithModuleName_DoesNotMutateOriginal(t *testing.T) {
	base := Default()
	derived := base.WithModuleName("main")
	if base.ModuleName != "init" {
		t.Errorf("base.ModuleName mutated to %q", base.ModuleName)
	}
	if derived.ModuleName != "main" {
		t.Errorf("derived.ModuleName = %q, want main", derived.ModuleName)
	}
}

func TestAddIgnoreRules_SiblingsDontSeeEachOther(t *testing.T) {
	base := Default()
	a := base.AddIgnoreRules(IgnoreRule{Glob: "*.a", BasePath: "."})
	b := base.AddIgnoreRules(IgnoreRule{Glob: "*.b", BasePath: "."})

	if len(base.IgnoreRules) != 0 {
		t.Errorf("base should be untouched, got %d rules", len(base.IgnoreRules))
	}
	if len(a.IgnoreRules) != 1 || a.IgnoreRules[0].Glob != "*.a" {
		t.Errorf("a = %+v", a.IgnoreRules)
	}
	if len(b.IgnoreRules) != 1 || b.IgnoreRules[0].Glob != "*.b" {
		t.Errorf("b = %+v", b.IgnoreRules)
	}
}

func TestIsIgnored_MatchesGlobRelativeToBase(t *testing.T) {
	c := Default().AddIgnoreRules(IgnoreRule{Glob: "*.spec.lua", BasePath: "src"})
	if !c.IsIgnored("src/foo.spec.lua") {
		t.Error("expected src/foo.spec.lua to be ignored")
	}
	if c.IsIgnored("src/foo.lua") {
		t.Error("src/foo.lua should not be ignored")
	}
}

func TestVisitingProject_DetectsCycle(t *testing.T) {
	c := Default()
	if c.IsVisitingProject("/a.project.json") {
		t.Fatal("fresh context should not be visiting anything")
	}
	c2 := c.AddVisitingProject("/a.project.json")
	if !c2.IsVisitingProject("/a.project.json") {
		t.Error("expected /a.project.json to be marked as visiting")
	}
	if c.IsVisitingProject("/a.project.json") {
		t.Error("original context should be unaffected by the clone's addition")
	}
}
