package timeline

import "order-timeline-service/internal/model"

// Merge combines a locally stored timeline with one supplied by the
// orders backend. Entries are keyed by status: every label present in
// either input survives, and when both carry the same label the remote
// entry wins, since backend history is the more authoritative source.
// The result is sorted ascending by timestamp.
func Merge(local, remote model.Timeline) model.Timeline {
	pos := make(map[model.Status]int, len(local)+len(remote))
	out := make(model.Timeline, 0, len(local)+len(remote))
	for _, src := range []model.Timeline{local, remote} {
		for _, e := range src {
			if i, ok := pos[e.Status]; ok {
				out[i] = e
				continue
			}
			pos[e.Status] = len(out)
			out = append(out, e)
		}
	}
	out.SortByTime()
	return out
}
