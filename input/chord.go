package input

import "time"

// TimeProvider supplies the current time to the chord matcher's timeout
// logic. Following the teacher's optional-interface-with-Noop-default
// idiom (providers.go's NoopBell etc.), production code uses
// SystemTimeProvider while tests inject a virtual clock to deterministically
// exercise the timeout without sleeping.
type TimeProvider interface {
	Now() time.Time
}

// SystemTimeProvider is the production TimeProvider, backed by time.Now.
type SystemTimeProvider struct{}

func (SystemTimeProvider) Now() time.Time { return time.Now() }

// DefaultChordTimeout is the Open Question's resolved default (spec §9):
// a pending chord buffer with no further key in this long is cleared.
const DefaultChordTimeout = 500 * time.Millisecond

// Binding maps a sequence of chord keys to an action. A single-key binding
// is a Sequence of length 1.
type Binding struct {
	Sequence []ChordKey
	Action   func()
}

type trieNode struct {
	action   func()
	children map[ChordKey]*trieNode
}

// Trie is a keyboard chord matcher built fresh once per frame from the
// focused-node-first hierarchy's collected bindings (per spec §4.H).
type Trie struct {
	root *trieNode
}

// NewTrie builds a Trie from bindings. A later binding with a sequence
// that's a prefix of (or identical to) an earlier one overwrites the
// shared path's action at that depth.
func NewTrie(bindings []Binding) *Trie {
	root := &trieNode{children: make(map[ChordKey]*trieNode)}
	for _, b := range bindings {
		n := root
		for _, k := range b.Sequence {
			child, ok := n.children[k]
			if !ok {
				child = &trieNode{children: make(map[ChordKey]*trieNode)}
				n.children[k] = child
			}
			n = child
		}
		n.action = b.Action
	}
	return &Trie{root: root}
}

// MatchResult classifies where a pending chord buffer stands after
// consuming one more key.
type MatchResult int

const (
	// NoMatch: the buffer (with the new key appended) matches no binding
	// prefix; the buffer should be cleared and the key handed to the
	// focused node's legacy per-node handler.
	NoMatch MatchResult = iota
	// Leaf: the buffer now matches a binding exactly; its action should
	// run and the buffer should be cleared.
	Leaf
	// HasChildren: the buffer is a strict prefix of at least one binding;
	// wait for the next key (or a timeout).
	HasChildren
)

// Matcher tracks one pending chord buffer against a Trie, with
// timeout-based reset per spec §4.H.
type Matcher struct {
	trie    *Trie
	clock   TimeProvider
	timeout time.Duration

	node    *trieNode
	lastKey time.Time
	pending bool
}

// NewMatcher builds a Matcher for trie, using clock for timeout checks and
// the default 500ms timeout. Pass opts to override (WithChordTimeout).
func NewMatcher(trie *Trie, clock TimeProvider, opts ...Option) *Matcher {
	m := &Matcher{trie: trie, clock: clock, timeout: DefaultChordTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Option configures a Matcher at construction time.
type Option func(*Matcher)

// WithChordTimeout overrides DefaultChordTimeout.
func WithChordTimeout(d time.Duration) Option {
	return func(m *Matcher) { m.timeout = d }
}

// Feed advances the pending chord buffer with one key event, expiring it
// first if the gap since the last key exceeds the configured timeout.
// The returned action is non-nil only when result == Leaf.
func (m *Matcher) Feed(e KeyEvent) (result MatchResult, action func()) {
	now := m.clock.Now()
	if m.pending && now.Sub(m.lastKey) > m.timeout {
		m.reset()
	}

	cur := m.node
	if cur == nil {
		cur = m.trie.root
	}

	next, ok := cur.children[ChordOf(e)]
	if !ok {
		m.reset()
		return NoMatch, nil
	}

	m.node = next
	m.pending = true
	m.lastKey = now

	if next.action != nil && len(next.children) == 0 {
		action = next.action
		m.reset()
		return Leaf, action
	}
	if next.action != nil {
		// Ambiguous: this node is both a leaf and has children (one
		// binding is a prefix of another). The exact match wins
		// immediately rather than waiting for a key that may never come.
		action = next.action
		m.reset()
		return Leaf, action
	}
	return HasChildren, nil
}

func (m *Matcher) reset() {
	m.node = nil
	m.pending = false
}

// Pending reports whether the matcher is mid-chord (waiting on more keys).
func (m *Matcher) Pending() bool { return m.pending }
