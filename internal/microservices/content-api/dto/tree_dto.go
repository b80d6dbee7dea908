package dto

// StoryTreeResponse is the whole graph of a story plus a structural analysis.
type StoryTreeResponse struct {
	Story              StoryResponse  `json:"story"`
	Pages              []PageResponse `json:"pages"`
	EndingPageIDs      []int64        `json:"ending_page_ids"`
	UnreachablePageIDs []int64        `json:"unreachable_page_ids"`
	DeadEndPageIDs     []int64        `json:"dead_end_page_ids"`
}

type StartPageResponse struct {
	PageID int64 `json:"page_id"`
}
