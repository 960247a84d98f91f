package api

import (
	"net/http"
	"strings"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
)

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req shared.CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "username is required", err)
		return
	}
	name, err := domain.NormalizeUsername(req.Username)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := shared.ValidateRequest(shared.CreateUserRequest{Username: name}); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "invalid username", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[name]; exists {
		shared.RespondWithError(w, r, http.StatusConflict, "username already exists")
		return
	}
	shared.RespondWithJSON(w, http.StatusCreated, s.addUserLocked(name))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.users[param(r, "username")]
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	shared.RespondWithJSON(w, http.StatusOK, id)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := param(r, "username")
	if _, ok := s.users[name]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	if pinned, ok := s.stats[name]; ok {
		shared.RespondWithJSON(w, http.StatusOK, pinned)
		return
	}

	stats := domain.Stats{
		Username:     name,
		TotalWords:   len(s.lists[name]),
		DueToday:     len(s.due[name]),
		TotalReviews: len(s.history[name]),
	}
	for _, uw := range s.lists[name] {
		switch uw.Status {
		case domain.StatusLearning:
			stats.Learning++
		case domain.StatusReviewing:
			stats.Reviewing++
		case domain.StatusMastered:
			stats.Mastered++
		}
	}
	if h := s.history[name]; len(h) > 0 {
		stats.LastReviewDate = h[len(h)-1].ReviewedAt
	}
	shared.RespondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) getWord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	detail, ok := s.dictionary[strings.ToLower(param(r, "word"))]
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "word not found")
		return
	}
	shared.RespondWithJSON(w, http.StatusOK, detail)
}

func (s *Server) addWord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := param(r, "username")
	word := strings.ToLower(param(r, "word"))
	if _, ok := s.users[name]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	if _, ok := s.dictionary[word]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "word not found")
		return
	}
	if s.findLocked(name, word) != nil {
		shared.RespondWithError(w, r, http.StatusConflict, "word already in list")
		return
	}
	s.appendWordLocked(name, word)
	s.due[name] = append(s.due[name], domain.DueItem{Word: word})
	shared.RespondWithJSON(w, http.StatusCreated, shared.MessageResponse{Message: "word added to list"})
}

func (s *Server) getUserWords(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := param(r, "username")
	if _, ok := s.users[name]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	status, err := domain.ParseWordStatus(r.URL.Query().Get("status"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid status filter")
		return
	}
	words := []domain.UserWord{}
	for _, uw := range s.lists[name] {
		if status == domain.StatusAll || uw.Status == status {
			words = append(words, *uw)
		}
	}
	shared.RespondWithJSON(w, http.StatusOK, shared.UserWordsResponse{Words: words, Count: len(words)})
}

func (s *Server) getDue(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := param(r, "username")
	if _, ok := s.users[name]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	words := append([]domain.DueItem{}, s.due[name]...)
	shared.RespondWithJSON(w, http.StatusOK, shared.DueWordsResponse{Words: words, Count: len(words)})
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	var req shared.SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil || shared.ValidateRequest(req) != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "quality rating (0-5) is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	name := param(r, "username")
	word := strings.ToLower(param(r, "word"))
	if _, ok := s.users[name]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	uw := s.findLocked(name, word)
	if uw == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "word not found")
		return
	}

	// Toy scheduling: doubling intervals, mastered at 21 days.
	quality := *req.Quality
	if quality >= 3 {
		uw.IntervalDays = max(1, uw.IntervalDays*2)
		uw.Status = domain.StatusReviewing
		if uw.IntervalDays >= 21 {
			uw.Status = domain.StatusMastered
		}
	} else {
		uw.IntervalDays = 1
		uw.Status = domain.StatusLearning
	}
	now := s.now().UTC()
	uw.NextReviewDate = now.AddDate(0, 0, uw.IntervalDays)

	s.submissions = append(s.submissions, Submission{Username: name, Word: word, Quality: quality})
	s.history[name] = append(s.history[name], domain.ReviewRecord{
		ID:           int64(len(s.history[name]) + 1),
		Word:         word,
		ReviewedAt:   now,
		Quality:      domain.Grade(quality),
		IntervalDays: uw.IntervalDays,
		EaseFactor:   uw.EaseFactor,
	})
	s.removeDueLocked(name, word)

	shared.RespondWithJSON(w, http.StatusOK, *uw)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := param(r, "username")
	word := strings.ToLower(param(r, "word"))
	if _, ok := s.users[name]; !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")
		return
	}
	if s.findLocked(name, word) == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "word not found")
		return
	}
	records := []domain.ReviewRecord{}
	for _, rec := range s.history[name] {
		if rec.Word == word {
			records = append(records, rec)
		}
	}
	shared.RespondWithJSON(w, http.StatusOK, shared.HistoryResponse{History: records, Count: len(records)})
}

func (s *Server) endSession(w http.ResponseWriter, _ *http.Request) {
	shared.RespondWithJSON(w, http.StatusOK, shared.MessageResponse{Message: "logged out"})
}

func (s *Server) notAuthenticated(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusUnauthorized, "not authenticated")
}

// findLocked returns username's list entry for word. Caller holds mu.
func (s *Server) findLocked(username, word string) *domain.UserWord {
	for _, uw := range s.lists[username] {
		if uw.Word == word {
			return uw
		}
	}
	return nil
}

// appendWordLocked puts word on username's list as a new learning item.
// Caller holds mu.
func (s *Server) appendWordLocked(username, word string) {
	s.nextID++
	now := s.now().UTC()
	s.lists[username] = append(s.lists[username], &domain.UserWord{
		ID:             s.nextID,
		Word:           word,
		AddedAt:        now,
		NextReviewDate: now,
		IntervalDays:   0,
		EaseFactor:     2.5,
		Status:         domain.StatusLearning,
	})
}

// removeDueLocked drops word from username's due queue. Caller holds mu.
func (s *Server) removeDueLocked(username, word string) {
	q := s.due[username]
	for i, item := range q {
		if item.Word == word {
			s.due[username] = append(q[:i:i], q[i+1:]...)
			return
		}
	}
}
