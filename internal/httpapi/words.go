package httpapi

import (
	"net/http"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/wordlist"
)

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	level, err := parseLevel(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	words, err := s.store.ListWords(r.Context(), level)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]wordResponse, 0, len(words))
	for _, word := range words {
		out = append(out, toWordResponse(word))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	word, err := s.store.GetWord(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWordResponse(word))
}

func (s *Server) handleCreateWord(w http.ResponseWriter, r *http.Request, actor model.User) {
	if !actor.Role.CanProctor() {
		writeErrorMessage(w, http.StatusForbidden, "teacher or admin access required")
		return
	}
	var req createWordRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	text := wordlist.Normalize(req.Text)
	if !wordlist.FilterForLang("nl")(text) {
		badRequest(w, "text must be a single Dutch word")
		return
	}
	level := req.DifficultyLevel
	if level == 0 {
		level = wordlist.ClassifyLevel(text)
	}
	if level < wordlist.LevelOneSyllable || level > wordlist.LevelMulti {
		badRequest(w, "difficulty_level must be between 1 and 3")
		return
	}
	tags := req.PatternTags
	if tags == "" {
		tags = wordlist.PatternTags(text)
	}
	word := model.Word{Text: text, DifficultyLevel: level, PatternTags: tags}
	if err := s.store.CreateWord(r.Context(), &word); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWordResponse(word))
}
