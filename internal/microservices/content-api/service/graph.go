package service

import (
	"sort"

	"storyhub/internal/microservices/content-api/models"
)

// GraphReport summarises the shape of one story graph.
type GraphReport struct {
	Endings     []int64
	Unreachable []int64
	DeadEnds    []int64
}

// AnalyzeGraph walks the graph breadth-first from startPageID. Pages never
// reached are unreachable; non-ending pages without choices are dead ends.
// Without a start page every page is unreachable.
func AnalyzeGraph(startPageID *int64, pages []models.Page) GraphReport {
	report := GraphReport{
		Endings:     []int64{},
		Unreachable: []int64{},
		DeadEnds:    []int64{},
	}

	edges := make(map[int64][]int64, len(pages))
	for _, page := range pages {
		for _, choice := range page.Choices {
			edges[page.ID] = append(edges[page.ID], choice.NextPageID)
		}
		if page.IsEnding {
			report.Endings = append(report.Endings, page.ID)
		} else if len(page.Choices) == 0 {
			report.DeadEnds = append(report.DeadEnds, page.ID)
		}
	}

	visited := make(map[int64]bool, len(pages))
	if startPageID != nil {
		queue := []int64{*startPageID}
		visited[*startPageID] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range edges[current] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	for _, page := range pages {
		if !visited[page.ID] {
			report.Unreachable = append(report.Unreachable, page.ID)
		}
	}

	sortIDs(report.Endings)
	sortIDs(report.Unreachable)
	sortIDs(report.DeadEnds)
	return report
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
