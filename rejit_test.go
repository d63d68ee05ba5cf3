package rejit

import "testing"

func TestCompileAndMatch(t *testing.T) {
	re, err := Compile(`\d+`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	defer re.Close()

	if !re.MatchString("room 204") {
		t.Error("MatchString: want true")
	}
	if re.MatchString("no digits here") {
		t.Error("MatchString: want false")
	}
}

func TestFindString(t *testing.T) {
	re, err := Compile(`\d+`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	defer re.Close()

	if got := re.FindString("room 204"); got != "204" {
		t.Errorf("FindString = %q, want %q", got, "204")
	}
	if got := re.FindString("no digits"); got != "" {
		t.Errorf("FindString = %q, want empty", got)
	}
}

func TestFindStringIndex(t *testing.T) {
	re, err := Compile(`cat`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	defer re.Close()

	loc := re.FindStringIndex("the cat sat")
	if loc == nil || loc[0] != 4 || loc[1] != 7 {
		t.Errorf("FindStringIndex = %v, want [4 7]", loc)
	}
}

func TestFindStringSubmatchIndex(t *testing.T) {
	re, err := Compile(`(\w+)@(\w+)`)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	defer re.Close()

	loc := re.FindStringSubmatchIndex("user@host")
	if loc == nil {
		t.Fatal("FindStringSubmatchIndex: want a match")
	}
	if loc[0] != 0 || loc[1] != 9 {
		t.Errorf("whole match = [%d,%d], want [0,9]", loc[0], loc[1])
	}
	if loc[2] != 0 || loc[3] != 4 {
		t.Errorf("group 0 = [%d,%d], want [0,4]", loc[2], loc[3])
	}
	if loc[4] != 5 || loc[5] != 9 {
		t.Errorf("group 1 = [%d,%d], want [5,9]", loc[4], loc[5])
	}
}

func TestLiteralAlternationUsesPrefilter(t *testing.T) {
	re, err := Compile("cat|dog|bird")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	defer re.Close()

	if got := re.FindString("I have a dog"); got != "dog" {
		t.Errorf("FindString = %q, want %q", got, "dog")
	}
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile: want panic for invalid pattern")
		}
	}()
	MustCompile("a{")
}

func TestCaseInsensitiveFlag(t *testing.T) {
	re, err := CompileFlags("hello", ICase)
	if err != nil {
		t.Fatalf("CompileFlags error: %v", err)
	}
	defer re.Close()
	if !re.MatchString("HELLO") {
		t.Error("MatchString: want true under ICase")
	}
}
