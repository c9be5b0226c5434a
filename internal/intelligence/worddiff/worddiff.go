// Package worddiff computes deterministic word-level diffs between two texts
// via a longest-common-subsequence alignment over whitespace-tokenized words.
// The HTML rendering marks added and removed spans distinctly, keeps a few
// words of context around each change, and escapes markup-unsafe characters,
// so the output can be embedded directly by a rendering layer.  The diff
// depends on nothing external; it must render even when every other analysis
// capability is down.
package worddiff

import (
	"html"
	"strings"
)

// contextWords is how many unchanged words are kept on each side of a change.
const contextWords = 3

// OpKind identifies one run of a diff.
type OpKind int

const (
	OpEqual OpKind = iota
	OpDelete
	OpInsert
)

// Op is a run of consecutive tokens sharing one diff outcome.
type Op struct {
	Kind   OpKind
	Tokens []string
}

// maxAlignCells bounds the quadratic alignment table at roughly 32 MB of
// ints.  Whole documents can land here unsegmented, so inputs whose product
// exceeds the bound take the linear coarse path instead.
const maxAlignCells = 4_000_000

// Diff aligns two token slices by longest common subsequence and returns the
// run-length-grouped edit script.  Equal inputs yield a single OpEqual run.
// Very large inputs degrade to a prefix/suffix alignment, reporting the
// middles as one removal and one insertion.
func Diff(tokens1, tokens2 []string) []Op {
	n, m := len(tokens1), len(tokens2)
	if int64(n)*int64(m) > maxAlignCells {
		return coarseDiff(tokens1, tokens2)
	}

	// lcs[i][j] is the LCS length of tokens1[i:] and tokens2[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if tokens1[i] == tokens2[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []Op
	appendRun := func(kind OpKind, token string) {
		if len(ops) > 0 && ops[len(ops)-1].Kind == kind {
			ops[len(ops)-1].Tokens = append(ops[len(ops)-1].Tokens, token)
			return
		}
		ops = append(ops, Op{Kind: kind, Tokens: []string{token}})
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case tokens1[i] == tokens2[j]:
			appendRun(OpEqual, tokens1[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			appendRun(OpDelete, tokens1[i])
			i++
		default:
			appendRun(OpInsert, tokens2[j])
			j++
		}
	}
	for ; i < n; i++ {
		appendRun(OpDelete, tokens1[i])
	}
	for ; j < m; j++ {
		appendRun(OpInsert, tokens2[j])
	}

	return ops
}

// coarseDiff trims the common prefix and suffix and treats whatever is left
// in the middle as replaced wholesale.
func coarseDiff(tokens1, tokens2 []string) []Op {
	p := 0
	for p < len(tokens1) && p < len(tokens2) && tokens1[p] == tokens2[p] {
		p++
	}
	s := 0
	for s < len(tokens1)-p && s < len(tokens2)-p &&
		tokens1[len(tokens1)-1-s] == tokens2[len(tokens2)-1-s] {
		s++
	}

	var ops []Op
	if p > 0 {
		ops = append(ops, Op{Kind: OpEqual, Tokens: tokens1[:p]})
	}
	if mid := tokens1[p : len(tokens1)-s]; len(mid) > 0 {
		ops = append(ops, Op{Kind: OpDelete, Tokens: mid})
	}
	if mid := tokens2[p : len(tokens2)-s]; len(mid) > 0 {
		ops = append(ops, Op{Kind: OpInsert, Tokens: mid})
	}
	if s > 0 {
		ops = append(ops, Op{Kind: OpEqual, Tokens: tokens1[len(tokens1)-s:]})
	}
	return ops
}

// Stats returns how many tokens the diff adds and removes.
func Stats(tokens1, tokens2 []string) (added, removed int) {
	for _, op := range Diff(tokens1, tokens2) {
		switch op.Kind {
		case OpInsert:
			added += len(op.Tokens)
		case OpDelete:
			removed += len(op.Tokens)
		}
	}
	return added, removed
}

// HTML renders a word-level diff of the two texts.  Removed words are wrapped
// in `<span class="diff-removed">`, added words in `<span class="diff-added">`,
// and unchanged words appear bare, trimmed to a few words of context around
// each change.  When the texts are word-identical the escaped second text is
// returned unmarked.
func HTML(text1, text2 string) string {
	ops := Diff(strings.Fields(text1), strings.Fields(text2))

	changed := false
	for _, op := range ops {
		if op.Kind != OpEqual {
			changed = true
			break
		}
	}
	if !changed {
		return html.EscapeString(text2)
	}

	var parts []string
	for idx, op := range ops {
		switch op.Kind {
		case OpDelete:
			parts = append(parts, `<span class="diff-removed">`+escapeJoin(op.Tokens)+`</span>`)
		case OpInsert:
			parts = append(parts, `<span class="diff-added">`+escapeJoin(op.Tokens)+`</span>`)
		case OpEqual:
			for _, tok := range contextWindow(op.Tokens, idx == 0, idx == len(ops)-1) {
				parts = append(parts, html.EscapeString(tok))
			}
		}
	}
	return strings.Join(parts, " ")
}

// RemovedBlock renders a whole section as removed content.
func RemovedBlock(text string) string {
	return `<div class="diff-removed">` + html.EscapeString(text) + `</div>`
}

// AddedBlock renders a whole section as added content.
func AddedBlock(text string) string {
	return `<div class="diff-added">` + html.EscapeString(text) + `</div>`
}

func escapeJoin(tokens []string) string {
	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped[i] = html.EscapeString(tok)
	}
	return strings.Join(escaped, " ")
}

// contextWindow trims an unchanged run to the words adjacent to changes: the
// tail when the run opens the diff, the head when it closes it, and both ends
// (with an elision marker) for interior runs longer than twice the window.
func contextWindow(tokens []string, first, last bool) []string {
	if first && last {
		return tokens
	}
	if first {
		if len(tokens) > contextWords {
			return tokens[len(tokens)-contextWords:]
		}
		return tokens
	}
	if last {
		if len(tokens) > contextWords {
			return tokens[:contextWords]
		}
		return tokens
	}
	if len(tokens) > 2*contextWords {
		window := make([]string, 0, 2*contextWords+1)
		window = append(window, tokens[:contextWords]...)
		window = append(window, "...")
		window = append(window, tokens[len(tokens)-contextWords:]...)
		return window
	}
	return tokens
}
