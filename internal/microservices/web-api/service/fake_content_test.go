package service

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"storyhub/internal/microservices/web-api/contentclient"
)

// fakeContent is an in-memory content API.
type fakeContent struct {
	mu      sync.Mutex
	nextID  int64
	stories map[int64]*contentclient.Story
	pages   map[int64]*contentclient.Page
	choices map[int64]*contentclient.Choice
	calls   map[string]int
}

var _ contentclient.API = (*fakeContent)(nil)

func newFakeContent() *fakeContent {
	return &fakeContent{
		stories: map[int64]*contentclient.Story{},
		pages:   map[int64]*contentclient.Page{},
		choices: map[int64]*contentclient.Choice{},
		calls:   map[string]int{},
	}
}

func notFound(what string) error {
	return &contentclient.APIError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func badRequest(msg string) error {
	return &contentclient.APIError{StatusCode: http.StatusBadRequest, Message: msg}
}

func (f *fakeContent) id() int64 {
	f.nextID++
	return f.nextID
}

// addStory seeds a story directly.
func (f *fakeContent) addStory(title, status, authorID string) *contentclient.Story {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &contentclient.Story{ID: f.id(), Title: title, Status: status, AuthorID: authorID, Tags: []string{}, CreatedAt: time.Now()}
	f.stories[st.ID] = st
	return st
}

func (f *fakeContent) addPage(storyID int64, text string, ending bool, label string) *contentclient.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &contentclient.Page{ID: f.id(), StoryID: storyID, Text: text, IsEnding: ending, Choices: []contentclient.Choice{}}
	if ending {
		l := label
		p.EndingLabel = &l
	}
	f.pages[p.ID] = p
	if st := f.stories[storyID]; st != nil && st.StartPageID == nil {
		id := p.ID
		st.StartPageID = &id
	}
	return p
}

func (f *fakeContent) addChoice(pageID, nextID int64, text string) *contentclient.Choice {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &contentclient.Choice{ID: f.id(), PageID: pageID, Text: text, NextPageID: nextID}
	f.choices[c.ID] = c
	return c
}

func (f *fakeContent) pageWithChoices(p *contentclient.Page) contentclient.Page {
	out := *p
	out.Choices = []contentclient.Choice{}
	for _, c := range f.choices {
		if c.PageID == p.ID {
			out.Choices = append(out.Choices, *c)
		}
	}
	sort.Slice(out.Choices, func(i, j int) bool { return out.Choices[i].ID < out.Choices[j].ID })
	return out
}

func (f *fakeContent) storyPages(storyID int64) []contentclient.Page {
	pages := []contentclient.Page{}
	for _, p := range f.pages {
		if p.StoryID == storyID {
			pages = append(pages, f.pageWithChoices(p))
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })
	return pages
}

func (f *fakeContent) ListStories(_ context.Context, q contentclient.StoryQuery) ([]contentclient.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListStories"]++
	out := []contentclient.Story{}
	for _, st := range f.stories {
		if q.Status != "" && st.Status != q.Status {
			continue
		}
		if q.AuthorID != "" && st.AuthorID != q.AuthorID {
			continue
		}
		match := true
		for _, t := range q.Tags {
			if !slices.Contains(st.Tags, t) {
				match = false
			}
		}
		if match {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeContent) GetStory(_ context.Context, id int64, includePages bool) (*contentclient.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetStory"]++
	st, ok := f.stories[id]
	if !ok {
		return nil, notFound("story")
	}
	out := *st
	if includePages {
		out.Pages = f.storyPages(id)
	}
	return &out, nil
}

func (f *fakeContent) GetStartPage(_ context.Context, storyID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stories[storyID]
	if !ok || st.StartPageID == nil {
		return 0, notFound("start page")
	}
	return *st.StartPageID, nil
}

func (f *fakeContent) GetTree(_ context.Context, storyID int64) (*contentclient.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stories[storyID]
	if !ok {
		return nil, notFound("story")
	}
	return &contentclient.Tree{Story: *st, Pages: f.storyPages(storyID)}, nil
}

func (f *fakeContent) CreateStory(_ context.Context, in contentclient.CreateStoryInput) (*contentclient.Story, error) {
	st := f.addStory(in.Title, in.Status, in.AuthorID)
	f.mu.Lock()
	defer f.mu.Unlock()
	st.Description = in.Description
	if in.Tags != nil {
		st.Tags = in.Tags
	}
	out := *st
	return &out, nil
}

func (f *fakeContent) UpdateStory(_ context.Context, id int64, in contentclient.UpdateStoryInput) (*contentclient.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stories[id]
	if !ok {
		return nil, notFound("story")
	}
	if in.Title != nil {
		st.Title = *in.Title
	}
	if in.Description != nil {
		st.Description = *in.Description
	}
	if in.Status != nil {
		st.Status = *in.Status
	}
	if in.Tags != nil {
		st.Tags = *in.Tags
	}
	if in.StartPageID != nil {
		p, ok := f.pages[*in.StartPageID]
		if !ok || p.StoryID != id {
			return nil, badRequest("start page must belong to this story")
		}
		pid := *in.StartPageID
		st.StartPageID = &pid
	}
	out := *st
	return &out, nil
}

func (f *fakeContent) DeleteStory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stories[id]; !ok {
		return notFound("story")
	}
	delete(f.stories, id)
	for pid, p := range f.pages {
		if p.StoryID == id {
			delete(f.pages, pid)
		}
	}
	return nil
}

func (f *fakeContent) ListPages(_ context.Context, storyID int64) ([]contentclient.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stories[storyID]; !ok {
		return nil, notFound("story")
	}
	return f.storyPages(storyID), nil
}

func (f *fakeContent) GetPage(_ context.Context, id int64) (*contentclient.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetPage"]++
	p, ok := f.pages[id]
	if !ok {
		return nil, notFound("page")
	}
	out := f.pageWithChoices(p)
	return &out, nil
}

func (f *fakeContent) CreatePage(_ context.Context, storyID int64, in contentclient.CreatePageInput) (*contentclient.Page, error) {
	f.mu.Lock()
	_, ok := f.stories[storyID]
	f.mu.Unlock()
	if !ok {
		return nil, notFound("story")
	}
	p := f.addPage(storyID, in.Text, in.IsEnding, in.EndingLabel)
	out := *p
	return &out, nil
}

func (f *fakeContent) UpdatePage(_ context.Context, id int64, in contentclient.UpdatePageInput) (*contentclient.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return nil, notFound("page")
	}
	if in.Text != nil {
		p.Text = *in.Text
	}
	if in.IsEnding != nil {
		p.IsEnding = *in.IsEnding
	}
	if in.EndingLabel != nil {
		l := *in.EndingLabel
		p.EndingLabel = &l
	}
	out := f.pageWithChoices(p)
	return &out, nil
}

func (f *fakeContent) DeletePage(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pages[id]; !ok {
		return notFound("page")
	}
	delete(f.pages, id)
	return nil
}

func (f *fakeContent) GetChoice(_ context.Context, id int64) (*contentclient.Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.choices[id]
	if !ok {
		return nil, notFound("choice")
	}
	out := *c
	return &out, nil
}

func (f *fakeContent) CreateChoice(_ context.Context, pageID int64, in contentclient.CreateChoiceInput) (*contentclient.Choice, error) {
	f.mu.Lock()
	from, ok := f.pages[pageID]
	to, toOK := f.pages[in.NextPageID]
	f.mu.Unlock()
	if !ok {
		return nil, notFound("page")
	}
	if !toOK || to.StoryID != from.StoryID {
		return nil, badRequest("next page must belong to the same story")
	}
	c := f.addChoice(pageID, in.NextPageID, in.Text)
	out := *c
	return &out, nil
}

func (f *fakeContent) UpdateChoice(_ context.Context, id int64, in contentclient.UpdateChoiceInput) (*contentclient.Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.choices[id]
	if !ok {
		return nil, notFound("choice")
	}
	if in.Text != nil {
		c.Text = *in.Text
	}
	if in.NextPageID != nil {
		c.NextPageID = *in.NextPageID
	}
	out := *c
	return &out, nil
}

func (f *fakeContent) DeleteChoice(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.choices[id]; !ok {
		return notFound("choice")
	}
	delete(f.choices, id)
	return nil
}

func (f *fakeContent) Ping(context.Context) error { return nil }
