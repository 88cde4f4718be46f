package accessors

import (
	"context"
	"os"
	"sort"
	"testing"

	"github.com/panbanda/accessorlint/pkg/analyzer"
	"github.com/panbanda/accessorlint/pkg/resolver"
	"github.com/panbanda/accessorlint/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func (m mapSource) paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func check(t *testing.T, files mapSource, opts ...Option) *Analysis {
	t.Helper()
	analysis, err := New(opts...).Analyze(context.Background(), files.paths(), files)
	require.NoError(t, err)
	return analysis
}

func messages(a *Analysis) []string {
	out := make([]string, 0, len(a.Findings))
	for _, f := range a.Findings {
		out = append(out, f.Message)
	}
	return out
}

func TestAnalyze_Scenario(t *testing.T) {
	path := "testdata/Scenario.java"
	analysis, err := New().Analyze(context.Background(), []string{path}, source.NewFilesystem())
	require.NoError(t, err)

	require.Len(t, analysis.Findings, 2)

	setter := analysis.Findings[0]
	assert.Equal(t, RuleKey, setter.Rule)
	assert.Equal(t, path, setter.File)
	assert.Equal(t, 7, setter.Line)
	assert.Equal(t, 15, setter.Column)
	assert.Equal(t, "A.setX", setter.Method)
	assert.Equal(t, KindSetter, setter.Kind)
	assert.Equal(t, "x", setter.Field)
	assert.Equal(t, `Refactor this setter so that it actually refers to the field "x".`, setter.Message)
	assert.Len(t, setter.Fingerprint, 16)

	getter := analysis.Findings[1]
	assert.Equal(t, 13, getter.Line)
	assert.Equal(t, 14, getter.Column)
	assert.Equal(t, "A.getY", getter.Method)
	assert.Equal(t, `Refactor this getter so that it actually refers to the field "y".`, getter.Message)

	s := analysis.Summary
	assert.Equal(t, 1, s.TotalFiles)
	assert.Equal(t, 0, s.DegradedFiles)
	assert.Equal(t, 7, s.TotalMethods)
	// setX, getY, getMax, getName
	assert.Equal(t, 4, s.Candidates)
	assert.Equal(t, 2, s.TotalFindings)
	assert.Equal(t, map[string]int{"getter": 1, "setter": 1}, s.ByKind)
	assert.Equal(t, 1, s.FilesWithFindings())
}

func TestAnalyze_CompliantAccessors(t *testing.T) {
	analysis := check(t, mapSource{"Point.java": `
class Point {
  private int x;
  private boolean visible;
  private String label;

  public int getX() { return x; }
  public void setX(int x) { this.x = x; }
  public boolean isVisible() { return this.visible; }
  public void setLabel(String value) {
    Runnable r = () -> label = value;
    r.run();
  }
  public String getLabel() {
    return new Object() {
      String read() { return label; }
    }.read();
  }
}
`})
	assert.Empty(t, analysis.Findings)
	assert.Equal(t, 5, analysis.Summary.Candidates)
}

func TestAnalyze_WrongFieldInGetterAndSetter(t *testing.T) {
	analysis := check(t, mapSource{"P.java": `
class P {
  private int foo;
  protected int bar;

  public int getFoo() { return bar; }
  public void setBar(int v) { foo = v; }
}
`})
	assert.Equal(t, []string{
		`Refactor this getter so that it actually refers to the field "foo".`,
		`Refactor this setter so that it actually refers to the field "bar".`,
	}, messages(analysis))
}

func TestAnalyze_NamingEdgeCases(t *testing.T) {
	analysis := check(t, mapSource{"E.java": `
class E {
  private int value;
  private int get;

  public int get() { return 0; }
  public boolean is() { return false; }
  public void set(int v) { }
  private int getValue() { return 0; }
  public static int isValue() { return 0; }
  public E setValue(int v) { return this; }
  public int getValue(int unused) { return 0; }
}
`})
	assert.Empty(t, analysis.Findings)
	assert.Equal(t, 0, analysis.Summary.Candidates)
}

func TestAnalyze_MissingOrPublicField(t *testing.T) {
	analysis := check(t, mapSource{"F.java": `
class F {
  public int open;
  int pkg;

  public int getOpen() { return 0; }
  public int getPkg() { return 0; }
  public int getMissing() { return 0; }
  public void setMissing(int v) { }
}
`})
	assert.Empty(t, analysis.Findings)
}

func TestAnalyze_OwnerIdentityNotName(t *testing.T) {
	analysis := check(t, mapSource{
		"Holder.java": `
class Holder {
  private int x;
  private Other other;

  public int getX() { return other.x; }
}
`,
		"Other.java": `
class Other {
  int x;
}
`,
	})
	require.Len(t, analysis.Findings, 1)
	assert.Equal(t, "Holder.getX", analysis.Findings[0].Method)
}

func TestAnalyze_InheritedFields(t *testing.T) {
	analysis := check(t, mapSource{
		"Base.java": `
class Base {
  protected int count;
  private int secret;
}
`,
		"Child.java": `
class Child extends Base {
  private int other;

  public int getCount() { return count; }
  public int getSecret() { return other; }
  public void setCount(int c) { super.count = c; }
}
`,
	})
	require.Len(t, analysis.Findings, 1)
	assert.Equal(t, "Child.getSecret", analysis.Findings[0].Method)
	assert.Equal(t, "secret", analysis.Findings[0].Field)
}

func TestAnalyze_SameNamedMethodOfOwnerCountsAsUse(t *testing.T) {
	analysis := check(t, mapSource{"M.java": `
class M {
  private int x;

  public int getX() { return x(); }
  int x() { return 1; }
}
`})
	assert.Empty(t, analysis.Findings)
}

func TestAnalyze_MethodsWithoutBody(t *testing.T) {
	analysis := check(t, mapSource{"Abs.java": `
abstract class Abs {
  protected int x;
  public int count;

  public abstract int getX();
  public abstract void setX(int v);
  public abstract int getCount();
  public abstract int getMissing();
}

interface Named {
  String NAME = "n";
  String getName();
}
`})
	assert.Equal(t, []string{
		`Refactor this getter so that it actually refers to the field "x".`,
		`Refactor this setter so that it actually refers to the field "x".`,
	}, messages(analysis))
	assert.Equal(t, "Abs.getX", analysis.Findings[0].Method)
}

func TestAnalyze_FieldReadThroughArrayElement(t *testing.T) {
	analysis := check(t, mapSource{"Ar.java": `
class Ar {
  private int x;
  private int y;
  private boolean flag;
  private Ar other;

  public int getX() { Ar[] a = {this}; return a[0].x; }
  public int getY() { return (flag ? this : other).y; }
}
`})
	assert.Empty(t, analysis.Findings)
}

func TestAnalyze_LocalFromEarlierCaseGroupIsNotAUse(t *testing.T) {
	analysis := check(t, mapSource{"Sw.java": `
class Sw {
  private int x;
  private int y;

  public int getX() {
    int k = y;
    switch (k) {
      case 1:
        int x = 0;
        break;
      default:
        x = 2;
    }
    return y;
  }
}
`})
	require.Len(t, analysis.Findings, 1)
	assert.Equal(t, `Refactor this getter so that it actually refers to the field "x".`, analysis.Findings[0].Message)
}

func TestAnalyze_MethodReferenceToSameNamedMethodCountsAsUse(t *testing.T) {
	analysis := check(t, mapSource{"R.java": `
import java.util.function.IntSupplier;

class R {
  private int foo;

  int foo() { return 1; }

  public int getFoo() {
    IntSupplier s = this::foo;
    return s.getAsInt();
  }
}
`})
	assert.Empty(t, analysis.Findings)
}

func TestAnalyze_ParameterShadowingFieldIsNotAUse(t *testing.T) {
	analysis := check(t, mapSource{"S.java": `
class S {
  private int x;

  public void setX(int x) { x = x; }
}
`})
	require.Len(t, analysis.Findings, 1)
	assert.Equal(t, KindSetter, analysis.Findings[0].Kind)
}

func TestAnalyze_NestedAndAnonymousTypes(t *testing.T) {
	analysis := check(t, mapSource{"Outer.java": `
class Outer {
  private int a;

  static class Inner {
    private int b;
    public int getB() { return 0; }
  }

  public Runnable getA() {
    return new Runnable() {
      private int c;
      public void run() { }
      public int getC() { return a; }
    };
  }
}
`})
	assert.Equal(t, []string{
		`Refactor this getter so that it actually refers to the field "b".`,
		`Refactor this getter so that it actually refers to the field "c".`,
	}, messages(analysis))
	assert.Equal(t, "Outer.Inner.getB", analysis.Findings[0].Method)
	assert.Equal(t, "Outer.getA.$1.getC", analysis.Findings[1].Method)
}

func TestAnalyze_DegradedFilesAreSkipped(t *testing.T) {
	analysis := check(t, mapSource{
		"Broken.java": `class Broken { private int x; public int getX() { return 0; `,
		"Ok.java":     `class Ok { private int y; public int getY() { return 1; } }`,
	})
	require.Len(t, analysis.Findings, 1)
	assert.Equal(t, "Ok.java", analysis.Findings[0].File)
	assert.Equal(t, 2, analysis.Summary.TotalFiles)
	assert.Equal(t, 1, analysis.Summary.DegradedFiles)
}

func TestAnalyze_WithKinds(t *testing.T) {
	files := mapSource{"K.java": `
class K {
  private int x;
  private int y;
  public int getX() { return y; }
  public void setY(int v) { x = v; }
}
`}
	getters := check(t, files, WithKinds(KindGetter))
	require.Len(t, getters.Findings, 1)
	assert.Equal(t, KindGetter, getters.Findings[0].Kind)

	setters := check(t, files, WithKinds(KindSetter))
	require.Len(t, setters.Findings, 1)
	assert.Equal(t, KindSetter, setters.Findings[0].Kind)
}

func TestAnalyze_TestFiles(t *testing.T) {
	files := mapSource{
		"src/test/java/FooTest.java": `class FooTest { private int x; public int getX() { return 0; } }`,
		"src/main/java/Foo.java":     `class Foo { }`,
	}

	assert.Empty(t, check(t, files).Findings)
	assert.Len(t, check(t, files, WithIncludeTestFiles()).Findings, 1)
}

func TestAnalyze_MaxFileSize(t *testing.T) {
	files := mapSource{"Big.java": `class Big { private int x; public int getX() { return 0; } }`}
	analysis := check(t, files, WithMaxFileSize(10))
	assert.Empty(t, analysis.Findings)
	assert.Equal(t, 0, analysis.Summary.TotalFiles)
}

func TestAnalyze_ProgressTracker(t *testing.T) {
	files := mapSource{"T.java": `class T { private int x; public int getX() { return x; } void run() { } }`}
	phases := map[string]int{}
	tracker := analyzer.NewTracker(func(phase string, _, _ int, _ string) {
		phases[phase]++
	})
	ctx := analyzer.WithTracker(context.Background(), tracker)

	_, err := New(WithWorkers(1)).Analyze(ctx, files.paths(), files)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"parse": 1, "check": 2}, phases)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := mapSource{"A.java": "class A { }"}
	_, err := New().Analyze(ctx, files.paths(), files)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckProgram_Idempotent(t *testing.T) {
	files := mapSource{"I.java": `
class I {
  private int a;
  private int b;
  public int getA() { return b; }
  public int getB() { return a; }
  public void setA(int v) { b = v; }
}
`}
	prog, err := resolver.New().Resolve(context.Background(), files.paths(), files)
	require.NoError(t, err)

	a := New()
	first, err := a.CheckProgram(context.Background(), prog)
	require.NoError(t, err)
	second, err := a.CheckProgram(context.Background(), prog)
	require.NoError(t, err)

	assert.Len(t, first.Findings, 3)
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestSortFindings(t *testing.T) {
	findings := []Finding{
		{File: "b.java", Line: 1},
		{File: "a.java", Line: 9, Column: 2},
		{File: "a.java", Line: 9, Column: 1, Message: "z"},
		{File: "a.java", Line: 9, Column: 1, Message: "a"},
	}
	SortFindings(findings)
	assert.Equal(t, []Finding{
		{File: "a.java", Line: 9, Column: 1, Message: "a"},
		{File: "a.java", Line: 9, Column: 1, Message: "z"},
		{File: "a.java", Line: 9, Column: 2},
		{File: "b.java", Line: 1},
	}, findings)
}

func TestFingerprint(t *testing.T) {
	a := fingerprint("A.java", "A.getX", "msg")
	assert.Equal(t, a, fingerprint("A.java", "A.getX", "msg"))
	assert.NotEqual(t, a, fingerprint("B.java", "A.getX", "msg"))
	assert.NotEqual(t, fingerprint("ab", "c", "m"), fingerprint("a", "bc", "m"))
}
