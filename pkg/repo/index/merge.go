package index

import (
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"os"
	"strings"
)

// bufferBlock is the number of records loaded from a run per refill. It also
// serves as the output flush cadence, bounding the unflushed window of the
// merged index stream.
const bufferBlock = 500

// bufferedRecord is one decoded run record pending in a run's buffer.
type bufferedRecord struct {
	postings PostingList
	term     string
}

// runCursor reads one sorted run sequentially through a bounded buffer.
type runCursor struct {
	reader *bufio.Reader
	file   *os.File
	buf    []bufferedRecord
}

// fill loads up to bufferBlock records into the cursor's buffer. It stops
// early at end of file; a record that fails to decode aborts the merge because
// run files are produced and consumed within the same process.
func (c *runCursor) fill() error {
	for range bufferBlock {
		line, err := c.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read run file %s: %w", c.file.Name(), err)
		}

		trimmed := strings.TrimSpace(string(line))
		if trimmed != "" {
			term, postings, decodeErr := c.decode(trimmed)
			if decodeErr != nil {
				return decodeErr
			}

			c.buf = append(c.buf, bufferedRecord{term: term, postings: postings})
		}

		if err == io.EOF {
			break
		}
	}

	return nil
}

func (c *runCursor) decode(line string) (string, PostingList, error) {
	term, postings, err := decodeRecord([]byte(line))
	if err != nil {
		return "", nil, fmt.Errorf("run file %s: %w", c.file.Name(), err)
	}

	return term, postings, nil
}

// pop removes and returns the record at the head of the buffer.
func (c *runCursor) pop() bufferedRecord {
	rec := c.buf[0]
	c.buf = c.buf[1:]

	return rec
}

// headEntry is a heap entry pointing at the smallest pending term of one run.
type headEntry struct {
	term string
	run  int
}

// termHeap is a min-heap over run heads keyed by term. It holds at most one
// entry per run; ties across runs may pop in any order because all postings
// for a term flow into the same accumulator before a boundary is detected.
type termHeap []headEntry

func (h termHeap) Len() int { return len(h) }

func (h termHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}

	return h[i].run < h[j].run
}

func (h termHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *termHeap) Push(x any) { *h = append(*h, x.(headEntry)) }

func (h *termHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]

	return entry
}

// Merge streams the given sorted run files into a single merged index at
// indexPath, unioning postings per term across runs. It returns the byte
// offset of every term's record in the output file and the unique-term count.
//
// Because each run is internally sorted and the heap always yields the
// globally smallest head term, all records for a term arrive contiguously;
// a term boundary therefore completes the accumulation before any record of a
// larger term is observed. Per-document frequency addition and field-set union
// are commutative and associative, so merge order across runs does not affect
// the result.
func Merge(runFiles []string, indexPath string) (map[string]int64, int, error) {
	out, err := os.Create(indexPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create merged index %s: %w", indexPath, err)
	}
	defer out.Close()

	cursors := make([]*runCursor, 0, len(runFiles))

	defer func() {
		for _, c := range cursors {
			c.file.Close()
		}
	}()

	pending := &termHeap{}

	for _, path := range runFiles {
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open run file %s: %w", path, err)
		}

		c := &runCursor{file: f, reader: bufio.NewReader(f)}
		cursors = append(cursors, c)

		if err := c.fill(); err != nil {
			return nil, 0, err
		}

		if len(c.buf) > 0 {
			heap.Push(pending, headEntry{term: c.buf[0].term, run: len(cursors) - 1})
		}
	}

	var (
		current     string
		accumulated bool
		position    int64
		unique      int
		unflushed   int
	)

	offsets := make(map[string]int64)
	acc := make(map[string]*posting)
	bw := bufio.NewWriter(out)

	emit := func(term string) error {
		offsets[term] = position

		line, err := encodeRecord(term, acc)
		if err != nil {
			return err
		}

		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("failed to write merged index: %w", err)
		}

		position += int64(len(line))
		unique++

		return nil
	}

	for pending.Len() > 0 {
		entry := heap.Pop(pending).(headEntry)

		// Term boundary: every record of the current term has been merged.
		if accumulated && entry.term != current {
			if err := emit(current); err != nil {
				return nil, 0, err
			}

			acc = make(map[string]*posting)

			unflushed++
			if unflushed >= bufferBlock {
				if err := bw.Flush(); err != nil {
					return nil, 0, fmt.Errorf("failed to flush merged index: %w", err)
				}

				unflushed = 0
			}
		}

		current = entry.term
		accumulated = true

		rec := cursors[entry.run].pop()

		for docID, p := range rec.postings {
			merged := acc[docID]
			if merged == nil {
				merged = newPosting()
				acc[docID] = merged
			}

			merged.freq += p.Freq

			for _, field := range p.Fields {
				merged.fields[field] = struct{}{}
			}
		}

		if len(cursors[entry.run].buf) == 0 {
			if err := cursors[entry.run].fill(); err != nil {
				return nil, 0, err
			}
		}

		if len(cursors[entry.run].buf) > 0 {
			heap.Push(pending, headEntry{term: cursors[entry.run].buf[0].term, run: entry.run})
		}
	}

	if accumulated && len(acc) > 0 {
		if err := emit(current); err != nil {
			return nil, 0, err
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, 0, fmt.Errorf("failed to flush merged index: %w", err)
	}

	return offsets, unique, nil
}
