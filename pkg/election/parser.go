package election

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// maxPrealloc bounds the capacity reserved from header counts; longer
// instances grow as their tokens arrive.
const maxPrealloc = 1024

// tokenReader walks whitespace-separated tokens of an instance stream
type tokenReader struct {
	scanner *bufio.Scanner
	pos     int
}

func newTokenReader(r io.Reader) *tokenReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	return &tokenReader{scanner: scanner}
}

func (tr *tokenReader) next(what string) (string, error) {
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return "", fmt.Errorf("reading %s: %w", what, err)
		}
		return "", fmt.Errorf("reading %s: unexpected end of input after %d tokens", what, tr.pos)
	}
	tr.pos++
	return tr.scanner.Text(), nil
}

func (tr *tokenReader) readInt(what string) (int, error) {
	tok, err := tr.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("token %d (%s): %w", tr.pos, what, err)
	}
	return v, nil
}

func (tr *tokenReader) readFloat(what string) (float64, error) {
	tok, err := tr.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("token %d (%s): %w", tr.pos, what, err)
	}
	return v, nil
}

// Parse reads an instance in the plain-text layout:
//
//	c n
//	p
//	r_1[1] ... r_1[c] σ_1
//	...
//	r_n[1] ... r_n[c] σ_n
//	ε δ
//
// Line breaks are not significant. The result is validated.
func Parse(r io.Reader) (*Election, error) {
	tr := newTokenReader(r)

	c, err := tr.readInt("candidate count")
	if err != nil {
		return nil, err
	}
	n, err := tr.readInt("voter count")
	if err != nil {
		return nil, err
	}
	if c < 1 || n < 1 {
		return nil, ValidationErrors{{
			Field:   "header",
			Message: "candidate and voter counts must be positive",
			Value:   fmt.Sprintf("c=%d n=%d", c, n),
		}}
	}
	if c > math.MaxInt32 || n > math.MaxInt32 {
		return nil, ValidationErrors{{
			Field:   "header",
			Message: fmt.Sprintf("candidate and voter counts must not exceed %d", math.MaxInt32),
			Value:   fmt.Sprintf("c=%d n=%d", c, n),
		}}
	}

	p, err := tr.readInt("designated candidate")
	if err != nil {
		return nil, err
	}

	e := &Election{
		Candidates:  c,
		Voters:      n,
		Designated:  Candidate(p),
		References:  make([]Ranking, 0, min(n, maxPrealloc)),
		Dispersions: make([]float64, 0, min(n, maxPrealloc)),
	}

	for i := 0; i < n; i++ {
		ref := make(Ranking, 0, min(c, maxPrealloc))
		for j := 0; j < c; j++ {
			cand, err := tr.readInt(fmt.Sprintf("voter %d position %d", i+1, j+1))
			if err != nil {
				return nil, err
			}
			ref = append(ref, Candidate(cand))
		}
		e.References = append(e.References, ref)

		sigma, err := tr.readFloat(fmt.Sprintf("voter %d dispersion", i+1))
		if err != nil {
			return nil, err
		}
		e.Dispersions = append(e.Dispersions, sigma)
	}

	if e.Epsilon, err = tr.readFloat("epsilon"); err != nil {
		return nil, err
	}
	if e.Delta, err = tr.readFloat("delta"); err != nil {
		return nil, err
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadFromFile parses an instance file
func LoadFromFile(path string) (*Election, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open instance file %s: %w", path, err)
	}
	defer file.Close()

	e, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("instance file %s: %w", path, err)
	}
	return e, nil
}
