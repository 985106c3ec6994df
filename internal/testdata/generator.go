package testdata

import (
	"math/rand"
	"time"
)

var sampleUsers = []struct{ username, email string }{
	{"john", "john@example.org"},
	{"jane", "jane@example.org"},
	{"kai", "kai@example.org"},
}

var sampleContent = []string{
	"first light over the harbour",
	"anyone else still running go 1.21 in prod?",
	"coffee count: 3",
	"shipped it",
	"reading about CRDTs again",
	"the build is green and I do not trust it",
	"weekend plans: none, gloriously",
}

// Seed registers the sample users and publishes n posts spread over the
// last few hours, oldest first, so ids 1..n follow creation order.
func Seed(s *Server, n int) {
	for _, u := range sampleUsers {
		s.AddUser(u.username, u.email)
	}
	rng := rand.New(rand.NewSource(int64(n)))
	start := time.Now().UTC().Add(-time.Duration(n) * time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		author := sampleUsers[rng.Intn(len(sampleUsers))].username
		content := sampleContent[rng.Intn(len(sampleContent))]
		s.addPost(author, content, start.Add(time.Duration(i)*time.Minute))
	}
}
