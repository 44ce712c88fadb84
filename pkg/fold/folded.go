package fold

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RootBucketName is the frame name used in folded output for weight that
// was inserted with an empty path.
const RootBucketName = "[unknown]"

// Sample is one folded line: a root-first stack and its weight.
type Sample struct {
	Stack  []string `json:"stack"`
	Weight uint64   `json:"weight"`
}

// Profile is a decoded folded-stacks profile.
type Profile struct {
	Samples []Sample `json:"samples"`
}

// Decode parses folded stack lines of the form "frame1;...;frameN weight".
// The weight is separated from the stack by the last space on the line;
// blank lines are skipped.
func Decode(r io.Reader) (*Profile, error) {
	res := &Profile{Samples: make([]Sample, 0)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		idx := strings.LastIndexByte(line, ' ')
		if idx == -1 {
			return nil, fmt.Errorf("folded: line %d: missing weight", lineno)
		}
		weight, err := strconv.ParseUint(line[idx+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("folded: line %d: malformed weight: %w", lineno, err)
		}
		res.Samples = append(res.Samples, Sample{
			Stack:  strings.Split(line[:idx], ";"),
			Weight: weight,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("folded: %w", err)
	}

	return res, nil
}

// InsertProfile folds every sample of a decoded profile into the tree.
func (t *Tree) InsertProfile(p *Profile) {
	for _, s := range p.Samples {
		t.Insert(s.Stack, s.Weight)
	}
}

// WriteFolded emits the tree in folded stack format: one line per
// insertion terminal carrying the node's exclusive weight, visited depth
// first in first-insertion order. Terminals with exclusive weight zero
// are still emitted; nodes no insertion ended at are not.
func (t *Tree) WriteFolded(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := t.writeFolded(bw, rootID, nil); err != nil {
		return err
	}
	return bw.Flush()
}

func (t *Tree) writeFolded(w *bufio.Writer, id nodeID, path []string) error {
	n := &t.nodes[id]
	if id != rootID {
		path = append(path, n.name)
	}
	if n.terminal {
		name := RootBucketName
		if len(path) > 0 {
			name = strings.Join(path, ";")
		}
		if _, err := fmt.Fprintf(w, "%s %d\n", name, t.exclusive(id)); err != nil {
			return err
		}
	}
	for _, child := range n.order {
		if err := t.writeFolded(w, child, path); err != nil {
			return err
		}
	}
	return nil
}
