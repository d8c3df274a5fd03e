package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/generator"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/retrieval"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const comparisonJSON = `{"proposals": [
  {"proposal_id": "p1", "vendor_name": "Acme", "overall_score": 90},
  {"proposal_id": "p2", "vendor_name": "Globex", "overall_score": 70}
], "executive_summary": "Acme leads", "recommendations": [{"rank": 1, "proposal_id": "p1", "reasoning": "Best fit"}]}`

func testProposals() []models.Proposal {
	return []models.Proposal{
		{ID: "p1", Title: "Proposal: Acme", Content: "Cloud migration on AWS with PostgreSQL database", Budget: 100000, TimelineMonths: 6},
		{ID: "p2", Title: "Proposal: Globex", Content: "Marketing campaign and brand refresh", Budget: 300000, TimelineMonths: 12},
	}
}

// scriptedGenerator answers comparison and question prompts separately and
// records every prompt it sees.
type scriptedGenerator struct {
	mu         sync.Mutex
	prompts    []string
	comparison func() (string, error)
	question   func(prompt string) (string, error)
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if strings.Contains(prompt, "USER QUESTION:") {
		if g.question == nil {
			return "Acme is cheaper.", nil
		}
		return g.question(prompt)
	}
	if g.comparison == nil {
		return comparisonJSON, nil
	}
	return g.comparison()
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding quota exceeded")
}

// orderedRetriever returns fixed documents regardless of the query.
type orderedRetriever struct {
	docs []retrieval.Document
}

func (r orderedRetriever) Index(_ context.Context, id string, _ []retrieval.Document) (retrieval.Handle, error) {
	return retrieval.Handle(id), nil
}

func (r orderedRetriever) Search(context.Context, retrieval.Handle, string, int) ([]retrieval.Document, error) {
	return r.docs, nil
}

func (r orderedRetriever) Drop(context.Context, retrieval.Handle) error { return nil }

func newTestMachine(gen generator.Generator, ret retrieval.Retriever) (*Machine, *MemoryStore) {
	store := NewMemoryStore(0)
	return NewMachine(store, gen, ret, utils.NewLogger("error"), nil, Config{}), store
}

func hashIndex() *retrieval.VectorIndex {
	return retrieval.NewVectorIndex(retrieval.NewHashEmbedder(256))
}

func startTestSession(t *testing.T, m *Machine) models.Session {
	t.Helper()
	s, err := m.Start(context.Background(), StartInput{SessionID: "s1", Proposals: testProposals()})
	require.NoError(t, err)
	return s
}

func TestStart_NoProposals(t *testing.T) {
	gen := &scriptedGenerator{}
	m, _ := newTestMachine(gen, hashIndex())

	s, err := m.Start(context.Background(), StartInput{SessionID: "empty"})
	assert.ErrorIs(t, err, ErrNoProposals)
	assert.Equal(t, models.StateEnded, s.State)

	status, err := m.Status(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, models.StateEnded, status.State)
	assert.True(t, status.HasErrors)
	assert.Zero(t, gen.calls())
}

func TestStart_BackendUnavailable(t *testing.T) {
	m, _ := newTestMachine(nil, hashIndex())

	s, err := m.Start(context.Background(), StartInput{Proposals: testProposals()})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, models.StateEnded, s.State)
	assert.True(t, strings.HasPrefix(s.ID, "session_"))
	assert.NotEmpty(t, s.ErrorMessage)
}

func TestAsk_BackendUnavailable(t *testing.T) {
	gen := &scriptedGenerator{}
	m, store := newTestMachine(gen, hashIndex())
	startTestSession(t, m)
	before := gen.calls()

	// Same store, no generator: a session that outlived its backends.
	bare := NewMachine(store, nil, hashIndex(), utils.NewLogger("error"), nil, Config{})
	out, err := bare.Ask(context.Background(), "s1", AskInput{Question: "Which is cheaper?"})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Nil(t, out.Entry)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateInteractive, stored.State)
	assert.Empty(t, stored.ConversationHistory)
	assert.Empty(t, stored.ErrorMessage)
	assert.Equal(t, before, gen.calls())
}

func TestStart_SetupFailureSkipsComparison(t *testing.T) {
	gen := &scriptedGenerator{}
	m, _ := newTestMachine(gen, retrieval.NewVectorIndex(failingEmbedder{}))

	s, err := m.Start(context.Background(), StartInput{SessionID: "s1", Proposals: testProposals()})
	assert.ErrorIs(t, err, ErrSetupFailed)
	assert.ErrorContains(t, err, "embedding quota exceeded")
	assert.Equal(t, models.StateEnded, s.State)
	assert.Contains(t, s.ErrorMessage, "Setup failed")
	assert.Empty(t, s.CurrentAnalysis)
	assert.Zero(t, gen.calls())

	stored, err := m.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateEnded, stored.State)
}

func TestStart_ParsesComparison(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())

	s := startTestSession(t, m)

	assert.Equal(t, models.StateInteractive, s.State)
	assert.Equal(t, comparisonJSON, s.CurrentAnalysis)
	require.NotNil(t, s.StructuredAnalysis)
	assert.False(t, s.StructuredAnalysis.Synthesized)
	assert.Len(t, s.StructuredAnalysis.Proposals, 2)
	assert.False(t, s.Degraded)
	assert.Empty(t, s.ErrorMessage)
	assert.Equal(t, "s1", s.RetrievalHandle)
	assert.Nil(t, s.Alignments)
	assert.True(t, s.ContinueFlag)
}

func TestStart_MalformedOutputIsSynthesized(t *testing.T) {
	gen := &scriptedGenerator{comparison: func() (string, error) { return "Acme looks strong overall.", nil }}
	m, _ := newTestMachine(gen, hashIndex())

	s := startTestSession(t, m)

	assert.Equal(t, models.StateInteractive, s.State)
	assert.Equal(t, "Acme looks strong overall.", s.CurrentAnalysis)
	require.NotNil(t, s.StructuredAnalysis)
	assert.True(t, s.StructuredAnalysis.Synthesized)
	assert.Len(t, s.StructuredAnalysis.Proposals, 2)
	assert.False(t, s.Degraded)
}

func TestStart_ComparisonFailureDegrades(t *testing.T) {
	gen := &scriptedGenerator{comparison: func() (string, error) { return "", errors.New("model overloaded") }}
	m, _ := newTestMachine(gen, hashIndex())

	s := startTestSession(t, m)

	assert.Equal(t, models.StateInteractive, s.State)
	assert.True(t, s.Degraded)
	assert.Equal(t, comparisonPlaceholder, s.CurrentAnalysis)
	assert.Contains(t, s.ErrorMessage, "model overloaded")
	require.NotNil(t, s.StructuredAnalysis)
	assert.True(t, s.StructuredAnalysis.Synthesized)

	out, err := m.Ask(context.Background(), "s1", AskInput{Question: "Which proposal is cheaper?"})
	require.NoError(t, err)
	require.NotNil(t, out.Entry)
	assert.Empty(t, out.Session.ErrorMessage)
	assert.Equal(t, models.StateInteractive, out.Session.State)
}

func TestStart_WithRFPComputesAlignments(t *testing.T) {
	gen := &scriptedGenerator{}
	m, _ := newTestMachine(gen, hashIndex())
	rfp := &models.RFPDocument{ID: "r1", Title: "Cloud RFP", Content: "Move to the cloud with a managed database", Budget: 120000, TimelineMonths: 6}

	s, err := m.Start(context.Background(), StartInput{SessionID: "s1", Proposals: testProposals(), RFP: rfp})
	require.NoError(t, err)

	require.Len(t, s.Alignments, 2)
	assert.Equal(t, 100, s.Alignments["p1"].Budget)
	assert.Equal(t, 20, s.Alignments["p2"].Budget)
	require.NotNil(t, s.RFP)
	assert.Equal(t, "r1", s.RFP.ID)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Request for Proposal")
	assert.Contains(t, prompt, "RFP Alignment: overall")
}

func TestStart_WithoutRFPUsesBestPractice(t *testing.T) {
	gen := &scriptedGenerator{}
	m, _ := newTestMachine(gen, hashIndex())
	startTestSession(t, m)

	assert.Contains(t, gen.prompts[0], "industry best practices")
}

func TestStart_CopiesProposals(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())
	proposals := testProposals()

	_, err := m.Start(context.Background(), StartInput{SessionID: "s1", Proposals: proposals})
	require.NoError(t, err)
	proposals[0].Title = "mutated"

	s, err := m.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Proposal: Acme", s.Proposals[0].Title)
}

func TestAsk_HistoryGrowsByOne(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())
	startTestSession(t, m)

	for i := 1; i <= 3; i++ {
		out, err := m.Ask(context.Background(), "s1", AskInput{Question: fmt.Sprintf("Question %d about cost?", i)})
		require.NoError(t, err)
		require.NotNil(t, out.Entry)
		assert.Len(t, out.Session.ConversationHistory, i)
		assert.Equal(t, models.StateInteractive, out.Session.State)
	}

	status, err := m.Status(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, status.QuestionsAsked)
}

func TestAsk_ExitKeywordEndsSession(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())
	startTestSession(t, m)

	yes := true
	out, err := m.Ask(context.Background(), "s1", AskInput{Question: "ok, goodbye for now", Continue: &yes})
	require.NoError(t, err)
	require.NotNil(t, out.Entry)
	assert.Len(t, out.Session.ConversationHistory, 1)

	status, err := m.Status(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateEnded, status.State)

	_, err = m.Ask(context.Background(), "s1", AskInput{Question: "One more thing?"})
	assert.ErrorIs(t, err, ErrEnded)
}

func TestAsk_ContinueFalseEnds(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())
	startTestSession(t, m)

	no := false
	out, err := m.Ask(context.Background(), "s1", AskInput{Question: "Last question: cheapest?", Continue: &no})
	require.NoError(t, err)
	require.NotNil(t, out.Entry)
	assert.Equal(t, models.StateEnded, out.Session.State)
	assert.False(t, out.Session.ContinueFlag)
	assert.Empty(t, out.Session.RetrievalHandle)
}

func TestAsk_GenerationFailureAppendsNothing(t *testing.T) {
	gen := &scriptedGenerator{question: func(string) (string, error) { return "", errors.New("rate limited") }}
	m, _ := newTestMachine(gen, hashIndex())
	startTestSession(t, m)

	out, err := m.Ask(context.Background(), "s1", AskInput{Question: "Which is cheaper?"})
	require.NoError(t, err)
	assert.Nil(t, out.Entry)
	assert.Empty(t, out.Session.ConversationHistory)
	assert.Contains(t, out.Session.ErrorMessage, "rate limited")
	assert.Equal(t, models.StateEnded, out.Session.State)
}

func TestAsk_Validation(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())
	startTestSession(t, m)

	_, err := m.Ask(context.Background(), "s1", AskInput{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = m.Ask(context.Background(), "missing", AskInput{Question: "Which is cheaper?"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAsk_PreservesRetrieverOrder(t *testing.T) {
	ret := orderedRetriever{docs: []retrieval.Document{
		{Text: "b", Metadata: map[string]string{"title": "Zeta"}},
		{Text: "a", Metadata: map[string]string{"title": "Alpha"}},
		{Text: "c", Metadata: map[string]string{"title": "Mu"}},
	}}
	gen := &scriptedGenerator{}
	m, _ := newTestMachine(gen, ret)
	startTestSession(t, m)

	out, err := m.Ask(context.Background(), "s1", AskInput{Question: "Which is cheaper?"})
	require.NoError(t, err)
	require.NotNil(t, out.Entry)
	assert.Equal(t, []string{"Zeta", "Alpha", "Mu"}, out.Entry.RelevantProposals)

	prompt := gen.prompts[len(gen.prompts)-1]
	assert.Less(t, strings.Index(prompt, "[1] b"), strings.Index(prompt, "[2] a"))
	assert.Contains(t, prompt, "USER QUESTION: Which is cheaper?")
}

func TestAsk_RebuildsMissingIndex(t *testing.T) {
	idx := hashIndex()
	m, _ := newTestMachine(&scriptedGenerator{}, idx)
	s := startTestSession(t, m)

	require.NoError(t, idx.Drop(context.Background(), retrieval.Handle(s.RetrievalHandle)))

	out, err := m.Ask(context.Background(), "s1", AskInput{Question: "Who proposes the PostgreSQL database?"})
	require.NoError(t, err)
	require.NotNil(t, out.Entry)
	assert.Equal(t, "Proposal: Acme", out.Entry.RelevantProposals[0])
}

func TestAsk_SerializedPerSession(t *testing.T) {
	var inFlight, maxInFlight int32
	gen := &scriptedGenerator{question: func(string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			cur := atomic.LoadInt32(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
				break
			}
		}
		defer atomic.AddInt32(&inFlight, -1)
		return "answer", nil
	}}
	m, _ := newTestMachine(gen, hashIndex())
	startTestSession(t, m)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Ask(context.Background(), "s1", AskInput{Question: fmt.Sprintf("Question %d?", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := m.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, s.ConversationHistory, n)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestCloseAndDelete(t *testing.T) {
	m, _ := newTestMachine(&scriptedGenerator{}, hashIndex())
	startTestSession(t, m)

	s, err := m.Close(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateEnded, s.State)
	assert.False(t, s.ContinueFlag)

	again, err := m.Close(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, s.UpdatedAt, again.UpdatedAt)

	list, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, m.Delete(context.Background(), "s1"))
	_, err = m.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(context.Background(), "s1"), ErrNotFound)
	_, err = m.Close(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecide(t *testing.T) {
	base := models.Session{State: models.StateInteractive, ContinueFlag: true}

	tests := []struct {
		name     string
		mutate   func(*models.Session)
		question string
		want     models.SessionState
	}{
		{"plain question", nil, "Which is cheaper?", models.StateInteractive},
		{"error set", func(s *models.Session) { s.ErrorMessage = "boom" }, "Which is cheaper?", models.StateEnded},
		{"continue cleared", func(s *models.Session) { s.ContinueFlag = false }, "Which is cheaper?", models.StateEnded},
		{"goodbye", nil, "ok, goodbye for now", models.StateEnded},
		{"upper case", nil, "QUIT", models.StateEnded},
		{"substring match", nil, "Can we stopgap this?", models.StateEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			got, _ := decide(s, tt.question)
			assert.Equal(t, tt.want, got.State)
		})
	}
}

func TestKeyedMutexCleansUp(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
