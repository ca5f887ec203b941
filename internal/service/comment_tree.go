package service

import (
	"sort"

	"github.com/project-board-api/internal/models"
)

// BuildCommentTree arranges the flat comments of one article into top-level
// comments, newest first, each holding its replies oldest first.
//
// Replies to replies are attached to their top-level ancestor. A comment whose
// parent is not among comments, or whose parent chain loops back on itself,
// becomes a top-level comment.
func BuildCommentTree(comments []*models.CommentDto) []*models.CommentResponse {
	nodes := make(map[int64]*models.CommentResponse, len(comments))
	ordered := make([]*models.CommentResponse, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := models.CommentResponseFrom(c)
		nodes[n.ID] = n
		ordered = append(ordered, n)
	}

	t := &commentTree{nodes: nodes, isRoot: make(map[int64]bool, len(nodes))}

	roots := make([]*models.CommentResponse, 0, len(ordered))
	for _, n := range ordered {
		if t.root(n) {
			roots = append(roots, n)
		}
	}
	for _, n := range ordered {
		if t.root(n) {
			continue
		}
		top := t.topAncestor(n)
		top.ChildComments = append(top.ChildComments, n)
	}

	for _, r := range roots {
		sort.SliceStable(r.ChildComments, func(i, j int) bool {
			a, b := r.ChildComments[i], r.ChildComments[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		})
	}
	sort.SliceStable(roots, func(i, j int) bool {
		a, b := roots[i], roots[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return roots
}

type commentTree struct {
	nodes  map[int64]*models.CommentResponse
	isRoot map[int64]bool
}

// root reports whether n is shown at the top level: it has no parent, its
// parent is unknown, or it lies on a parent cycle.
func (t *commentTree) root(n *models.CommentResponse) bool {
	if v, ok := t.isRoot[n.ID]; ok {
		return v
	}
	v := !n.HasParent() || t.nodes[*n.ParentCommentID] == nil || t.onCycle(n)
	t.isRoot[n.ID] = v
	return v
}

func (t *commentTree) onCycle(n *models.CommentResponse) bool {
	seen := map[int64]struct{}{}
	cur := n
	for cur.HasParent() {
		parent := t.nodes[*cur.ParentCommentID]
		if parent == nil {
			return false
		}
		if parent.ID == n.ID {
			return true
		}
		if _, ok := seen[parent.ID]; ok {
			return false
		}
		seen[parent.ID] = struct{}{}
		cur = parent
	}
	return false
}

// topAncestor walks up from a non-root node to the first root above it
func (t *commentTree) topAncestor(n *models.CommentResponse) *models.CommentResponse {
	cur := t.nodes[*n.ParentCommentID]
	for !t.root(cur) {
		cur = t.nodes[*cur.ParentCommentID]
	}
	return cur
}
