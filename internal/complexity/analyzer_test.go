//go:build cgo

package complexity

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAnalyzeSource_Java(t *testing.T) {
	source := []byte(`class Sample {
    void simple() {
        System.out.println("hi");
    }

    int branchy(int x, boolean a, boolean b) {
        if (x > 0 && a) {
            return 1;
        }
        for (int i = 0; i < x; i++) {
            if (b) {
                x--;
            }
        }
        return x > 10 ? 2 : 3;
    }
}
`)

	fm, err := NewAnalyzer().AnalyzeSource(context.Background(), "Sample.java", source, LangJava)
	if err != nil {
		t.Fatalf("AnalyzeSource() error = %v", err)
	}
	if fm.FunctionCount != 2 {
		t.Fatalf("FunctionCount = %d, want 2", fm.FunctionCount)
	}

	byName := make(map[string]FunctionMetrics)
	for _, f := range fm.Functions {
		byName[f.Name] = f
	}

	tests := []struct {
		name       string
		cyclomatic int
		cognitive  int
		startLine  int
	}{
		{"simple", 1, 0, 2},
		// if, &&, for, nested if, ternary
		{"branchy", 6, 7, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := byName[tt.name]
			if !ok {
				t.Fatalf("function %q not found in %v", tt.name, fm.Functions)
			}
			if f.Cyclomatic != tt.cyclomatic {
				t.Errorf("Cyclomatic = %d, want %d", f.Cyclomatic, tt.cyclomatic)
			}
			if f.Cognitive != tt.cognitive {
				t.Errorf("Cognitive = %d, want %d", f.Cognitive, tt.cognitive)
			}
			if f.StartLine != tt.startLine {
				t.Errorf("StartLine = %d, want %d", f.StartLine, tt.startLine)
			}
		})
	}

	if fm.MaxCyclomatic != 6 || fm.TotalCyclomatic != 7 {
		t.Errorf("aggregates max=%d total=%d, want 6 and 7", fm.MaxCyclomatic, fm.TotalCyclomatic)
	}
}

func TestAnalyzeSource_JavaComparisonIsNotDecision(t *testing.T) {
	source := []byte(`class C {
    boolean gt(int a, int b) {
        return a > b;
    }
}
`)
	fm, err := NewAnalyzer().AnalyzeSource(context.Background(), "C.java", source, LangJava)
	if err != nil {
		t.Fatal(err)
	}
	if len(fm.Functions) != 1 || fm.Functions[0].Cyclomatic != 1 {
		t.Errorf("functions = %+v, want one with cyclomatic 1", fm.Functions)
	}
}

func TestAnalyzeSource_Kotlin(t *testing.T) {
	source := []byte(`fun greet(name: String?): String {
    val n = name ?: "world"
    if (n.isEmpty() || n == "x") {
        return "?"
    }
    return "hi $n"
}
`)

	fm, err := NewAnalyzer().AnalyzeSource(context.Background(), "Greet.kt", source, LangKotlin)
	if err != nil {
		t.Fatalf("AnalyzeSource() error = %v", err)
	}
	if len(fm.Functions) != 1 {
		t.Fatalf("functions = %+v, want 1", fm.Functions)
	}

	f := fm.Functions[0]
	if f.Name != "greet" {
		t.Errorf("Name = %q, want greet", f.Name)
	}
	// elvis, if, ||
	if f.Cyclomatic != 4 {
		t.Errorf("Cyclomatic = %d, want 4", f.Cyclomatic)
	}
	if f.Lines != 7 {
		t.Errorf("Lines = %d, want 7", f.Lines)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "Main.kt")
	if err := os.WriteFile(p, []byte("fun main() {\n    println(\"x\")\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fm, err := NewAnalyzer().AnalyzeFile(context.Background(), p)
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if fm.Language != LangKotlin || fm.FunctionCount != 1 {
		t.Errorf("got language %s with %d functions", fm.Language, fm.FunctionCount)
	}

	if _, err := NewAnalyzer().AnalyzeFile(context.Background(), filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("AnalyzeFile should reject unsupported extensions")
	}
}

func TestIsAvailable(t *testing.T) {
	if !IsAvailable() {
		t.Error("IsAvailable() = false in a cgo build")
	}
}
