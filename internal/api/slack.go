package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/interaction"
)

// handleActions receives button presses, menu selections, block actions and
// dialog submissions.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	cb, ok := s.parseCallback(w, r)
	if !ok {
		return
	}
	ev, err := interaction.FromCallback(cb)
	if err != nil {
		s.logger.Warn("unsupported interaction", "type", cb.Type, "error", err)
		writeBadRequest(w, "unsupported interaction type")
		return
	}
	s.dispatch(w, r, ev)
}

// handleOptions answers external select menus.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	cb, ok := s.parseCallback(w, r)
	if !ok {
		return
	}
	ev, err := interaction.FromOptionsCallback(cb)
	if err != nil {
		s.logger.Warn("unsupported options request", "type", cb.Type, "error", err)
		writeBadRequest(w, "unsupported options request")
		return
	}
	s.dispatch(w, r, ev)
}

// handleCommand receives slash commands.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		s.logger.Warn("parsing slash command", "error", err)
		writeNotFound(w)
		return
	}
	s.dispatch(w, r, interaction.FromSlashCommand(cmd))
}

// parseCallback decodes the form-encoded "payload" field. It writes the
// error response itself and reports whether the caller should continue.
func (s *Server) parseCallback(w http.ResponseWriter, r *http.Request) (slack.InteractionCallback, bool) {
	var cb slack.InteractionCallback

	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "invalid form body")
		return cb, false
	}
	raw := r.PostFormValue("payload")
	if raw == "" {
		writeBadRequest(w, "payload is required")
		return cb, false
	}
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		s.logger.Warn("decoding interaction payload", "error", err)
		writeBadRequest(w, "invalid payload")
		return cb, false
	}
	return cb, true
}

// dispatch routes ev and writes the immediate reply.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev interaction.Event) {
	reply, err := s.router.Route(r.Context(), ev)
	switch {
	case errors.Is(err, interaction.ErrUnroutable):
		if ev.Type == interaction.EventSlashCommand {
			writeNotFound(w)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	case errors.Is(err, interaction.ErrMalformedEvent):
		s.logger.Warn("malformed interaction", "type", ev.Type, "callback_id", ev.CallbackID, "error", err)
		writeBadRequest(w, "malformed interaction")
		return
	case err != nil:
		s.logger.Error("interaction failed", "type", ev.Type, "callback_id", ev.CallbackID, "error", err)
		writeInternalError(w, "interaction failed")
		return
	}

	body := interaction.Body(reply)
	if body == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
