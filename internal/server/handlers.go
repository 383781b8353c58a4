package server

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"gitlab.com/tozd/go/errors"

	"gitlab.com/wikidex/wikidex/internal/document"
)

// defaultStopPhrases is the empty stop-phrase list both handlers pass; the
// engine adds DefaultStopPhrase ("References:") to whatever it is given.
var defaultStopPhrases = []string{}

// conversationResponse is the buffered endpoint's body: the assistant
// Message plus the Sources the answer was grounded in.
type conversationResponse struct {
	Message document.Message  `json:"message"`
	Sources []document.Source `json:"sources"`
}

func decodeConversation(req *http.Request) (document.Conversation, errors.E) {
	var conv document.Conversation
	defer req.Body.Close()
	if err := json.NewDecoder(req.Body).Decode(&conv); err != nil {
		return document.Conversation{}, errors.WithStack(err)
	}
	return conv, nil
}

func (s *Server) handleConversation(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	ctx := req.Context()

	conv, errE := decodeConversation(req)
	if errE != nil {
		s.badRequest(w, errE)
		return
	}

	message, sources, errE := s.engine.Conversation(ctx, conv, defaultStopPhrases)
	if errE != nil {
		s.writeConversationError(w, errE)
		return
	}

	s.writeJSON(w, http.StatusOK, conversationResponse{Message: message, Sources: sources})
}

func (s *Server) handleStreamingConversation(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	ctx := req.Context()

	conv, errE := decodeConversation(req)
	if errE != nil {
		s.badRequest(w, errE)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.internalError(w, errors.New("streaming unsupported by response writer"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	tx := make(chan []byte)
	done := make(chan errors.E, 1)
	go func() {
		done <- s.engine.StreamingConversation(ctx, conv, tx, defaultStopPhrases)
		close(tx)
	}()

	for frame := range tx {
		if _, err := w.Write(frame); err != nil {
			s.logger.Error().Err(err).Msg("streaming write failed")
			return
		}
		flusher.Flush()
	}

	if errE := <-done; errE != nil {
		s.logger.Error().Err(errE).Msg("streaming conversation failed")
	}
}

func (s *Server) writeConversationError(w http.ResponseWriter, errE errors.E) {
	switch {
	case errors.Is(errE, document.ErrEmptyConversation), errors.Is(errE, document.ErrLastMessageIsNotUser):
		s.badRequest(w, errE)
	default:
		s.internalError(w, errE)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	encoded, err := json.Marshal(data)
	if err != nil {
		s.internalError(w, errors.WithStack(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(encoded)
}

func (s *Server) badRequest(w http.ResponseWriter, errE errors.E) {
	s.logger.Warn().Err(errE).Msg("bad request")
	http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
}

func (s *Server) internalError(w http.ResponseWriter, errE errors.E) {
	s.logger.Error().Err(errE).Msg("internal server error")
	http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
}
