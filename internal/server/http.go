package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/shares"
)

// shareView is the JSON representation of a share plus its current
// connection status.
type shareView struct {
	ID            string    `json:"id"`
	HostName      string    `json:"hostName"`
	HostAddress   string    `json:"hostAddress"`
	ShareName     string    `json:"shareName"`
	Comment       string    `json:"comment,omitempty"`
	DiscoveredAt  time.Time `json:"discoveredAt"`
	ManuallyAdded bool      `json:"manuallyAdded"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
}

// statusView is the JSON representation of a single connection status.
type statusView struct {
	ShareID string `json:"shareId"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

func newShareView(share shares.Share, st shares.ConnectionStatus) shareView {
	return shareView{
		ID:            share.ID,
		HostName:      share.HostName,
		HostAddress:   share.HostAddress,
		ShareName:     share.ShareName,
		Comment:       share.Comment,
		DiscoveredAt:  share.DiscoveredAt,
		ManuallyAdded: share.ManuallyAdded,
		Status:        st.State.String(),
		Reason:        st.Reason,
	}
}

// handleShares serves GET /api/shares: every known share with its
// current connection status, manual entries first.
func (s *Server) handleShares(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := s.shares.AllShares()
	statuses := s.statuses.Statuses()

	views := make([]shareView, 0, len(list))
	for _, share := range list {
		st, ok := statuses[share.ID]
		if !ok {
			st = shares.Unknown()
		}
		views = append(views, newShareView(share, st))
	}

	writeJSON(w, r, views)
}

// handleStatuses serves GET /api/statuses: the raw status map keyed by
// share id, without the share metadata.
func (s *Server) handleStatuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	statuses := s.statuses.Statuses()
	views := make(map[string]statusView, len(statuses))
	for id, st := range statuses {
		views[id] = statusView{ShareID: id, Status: st.State.String(), Reason: st.Reason}
	}

	writeJSON(w, r, views)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}
