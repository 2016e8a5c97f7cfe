package optimistic

import (
	"errors"

	"github.com/glabrego/network-cli/internal/network"
)

var (
	ErrNotEditing = errors.New("post is not being edited")
	ErrSubmitting = errors.New("edit is already being saved")
)

// Like is the like toggle of one post. Count is only ever written from the
// server: the optimistic flip changes Liked, never the number.
type Like struct {
	Toggle
	Count int
}

func NewLike(liked bool, count int) *Like {
	return &Like{Toggle: NewToggle(liked), Count: count}
}

func (l *Like) Liked() bool {
	return l.Value()
}

// Confirm applies the authoritative count returned for t.
func (l *Like) Confirm(t Ticket, count int) bool {
	if !l.Toggle.Confirm(t) {
		return false
	}
	l.Count = count
	return true
}

func (l *Like) reseed(p network.Post) {
	if l.Toggle.Reseed(p.IsLiked) {
		l.Count = p.LikeCount
	}
}

// Follow is the follow toggle of one profile. User carries the counts the
// server returned with the last confirmed action.
type Follow struct {
	Toggle
	User network.User
}

func NewFollow(p network.Profile) *Follow {
	return &Follow{Toggle: NewToggle(p.Following), User: p.User}
}

func (f *Follow) Following() bool {
	return f.Value()
}

func (f *Follow) Confirm(t Ticket, user network.User) bool {
	if !f.Toggle.Confirm(t) {
		return false
	}
	f.User = user
	return true
}

func (f *Follow) reseed(p network.Profile) {
	if f.Toggle.Reseed(p.Following) {
		f.User = p.User
	}
}

// Edit is the edit-in-place state of one post. Text and Edited always come
// from the server; Draft is what the user is typing.
type Edit struct {
	Text       string
	Edited     bool
	Editing    bool
	Draft      string
	Submitting bool
	Err        error
}

func NewEdit(p network.Post) *Edit {
	return &Edit{Text: p.Text, Edited: p.Edited()}
}

// Start snapshots the current text into the draft.
func (e *Edit) Start() {
	if e.Editing {
		return
	}
	e.Editing = true
	e.Draft = e.Text
	e.Err = nil
}

func (e *Edit) SetDraft(text string) {
	if !e.Editing || e.Submitting {
		return
	}
	e.Draft = text
}

func (e *Edit) Cancel() {
	if e.Submitting {
		return
	}
	e.Editing = false
	e.Draft = ""
	e.Err = nil
}

// Submit returns the draft to send. Invalid drafts are rejected locally and
// keep edit mode open.
func (e *Edit) Submit() (string, error) {
	if !e.Editing {
		return "", ErrNotEditing
	}
	if e.Submitting {
		return "", ErrSubmitting
	}
	if err := network.ValidatePostText(e.Draft); err != nil {
		e.Err = err
		return "", err
	}
	e.Submitting = true
	e.Err = nil
	return e.Draft, nil
}

// Confirm takes text and marker from the updated post and leaves edit mode.
func (e *Edit) Confirm(p network.Post) {
	e.Text = p.Text
	e.Edited = p.Edited()
	e.Editing = false
	e.Submitting = false
	e.Draft = ""
	e.Err = nil
}

// Fail keeps the draft so the user can retry.
func (e *Edit) Fail(err error) {
	e.Submitting = false
	e.Err = err
}

func (e *Edit) reseed(p network.Post) {
	if e.Editing {
		return
	}
	e.Text = p.Text
	e.Edited = p.Edited()
}
