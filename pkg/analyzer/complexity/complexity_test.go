package complexity

import (
	"errors"
	"sync"
	"testing"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonSource = `def f(xs):
    if xs and len(xs) > 1 and xs[0]:
        pass
    elif not xs:
        pass
    for x in xs:
        while x:
            x -= 1
    try:
        pass
    except ValueError:
        pass
    return [x for x in xs]
`

const goSource = `package main

func f(a, b bool, xs []int) int {
	if a && b || !a {
		return 1
	}
	for _, x := range xs {
		_ = x
	}
	switch {
	case a:
	case b:
	}
	return 0
}
`

func TestStructured_Python(t *testing.T) {
	s := NewStructured()

	// 1 base + if + 2 extra "and" operands + elif + for + while + except + listcomp
	got, err := s.Estimate("f.py", pythonSource)
	require.NoError(t, err)
	assert.Equal(t, 9.0, got)
}

func TestStructured_Go(t *testing.T) {
	s := NewStructured()

	// 1 base + if + && + || + for + two cases
	got, err := s.Estimate("f.go", goSource)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestStructured_StraightLineCode(t *testing.T) {
	s := NewStructured()

	got, err := s.Estimate("x.py", "x = 1\ny = 2\n")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestStructured_Failures(t *testing.T) {
	s := NewStructured()

	tests := []struct {
		name string
		path string
		text string
	}{
		{"unknown language", "notes.txt", "if x then y"},
		{"empty text", "a.py", ""},
		{"whitespace only", "a.py", "  \n\t\n"},
		{"diff fragment", "a.py", "@@ -1 +1 @@\n+if x:\n+    for y in z:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Estimate(tt.path, tt.text)
			if !errors.Is(err, ErrUnparseable) {
				t.Errorf("Estimate() error = %v, want ErrUnparseable", err)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"", 0},
		{"x = 1", 0},
		{"if a:\n    pass", 1},
		{"+if x:\n+    for y in z:\n+        while y:", 3},
		{"elif b:", 1},
		{"format(x)", 0},
	}

	for _, tt := range tests {
		got, err := Keywords{}.Estimate("a.py", tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}

func TestChain(t *testing.T) {
	c := Default()

	t.Run("structured when parseable", func(t *testing.T) {
		r := c.Estimate("f.py", pythonSource)
		assert.Equal(t, models.ComplexityStructured, r.Method)
		assert.Equal(t, 9.0, r.Value)
	})

	t.Run("heuristic for diff fragment", func(t *testing.T) {
		r := c.Estimate("a.py", "@@ -1 +1 @@\n+if x:\n+    for y in z:\n")
		assert.Equal(t, models.ComplexityHeuristic, r.Method)
		assert.Equal(t, 2.0, r.Value)
	})

	t.Run("empty text is zero", func(t *testing.T) {
		r := c.Estimate("a.py", "")
		assert.Equal(t, models.ComplexityHeuristic, r.Method)
		assert.Equal(t, 0.0, r.Value)
	})

	t.Run("unknown extension", func(t *testing.T) {
		r := c.Estimate("README.md", "if you want to")
		assert.Equal(t, models.ComplexityHeuristic, r.Method)
		assert.Equal(t, 1.0, r.Value)
	})
}

type failingEstimator struct{}

func (failingEstimator) Estimate(string, string) (float64, error) {
	return 0, errors.New("boom")
}

func TestChain_PrimaryFailure(t *testing.T) {
	c := NewChain(failingEstimator{})
	r := c.Estimate("a.go", "for i := 0; i < 3; i++ {}")
	assert.Equal(t, models.ComplexityHeuristic, r.Method)
	assert.Equal(t, 1.0, r.Value)

	r = NewChain(nil).Estimate("a.go", "if x {}")
	assert.Equal(t, 1.0, r.Value)
}

func TestStructured_Concurrent(t *testing.T) {
	s := NewStructured()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Estimate("f.go", goSource)
			if err != nil {
				errs <- err
				return
			}
			if got != 7 {
				errs <- errors.New("unexpected complexity")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
