package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"infected-ranked/internal/database/databasetest"
	"infected-ranked/internal/domain"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/repository"

	"github.com/rs/zerolog"
)

type memCache struct {
	mu          sync.Mutex
	entries     map[[2]int][]domain.Standing
	version     int64
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[[2]int][]domain.Standing)}
}

func (c *memCache) Get(_ context.Context, season, limit int) ([]domain.Standing, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[[2]int{season, limit}]
	return s, c.version, ok
}

func (c *memCache) Set(_ context.Context, version int64, season, limit int, standings []domain.Standing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return
	}
	c.entries[[2]int{season, limit}] = standings
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[2]int][]domain.Standing)
	c.version++
	c.invalidated++
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.RankChange
	err     error
}

func (n *recordingNotifier) NotifyRankChanges(_ context.Context, changes []domain.RankChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, changes...)
	return n.err
}

type env struct {
	players     *PlayerService
	settlement  *SettlementService
	seasons     *SeasonService
	leaderboard *LeaderboardService
	matches     *MatchService
	calc        *ranking.Calculator
	cache       *memCache
	notifier    *recordingNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()

	sqlDB := databasetest.Open(t)
	q := databasetest.Queries(sqlDB)
	log := zerolog.Nop()

	tables, err := ranking.Default()
	if err != nil {
		t.Fatalf("ranking.Default() error: %v", err)
	}
	calc := ranking.NewCalculator(tables)

	players := repository.NewPlayerRepository(sqlDB, q, log)
	matches := repository.NewMatchRepository(sqlDB, q, log)
	parts := repository.NewParticipationRepository(sqlDB, q, log)
	tx := repository.NewTransactor(sqlDB, players, matches, parts, log)

	e := &env{
		calc:     calc,
		cache:    newMemCache(),
		notifier: &recordingNotifier{},
	}
	e.players = NewPlayerService(tx, players, matches, calc, e.cache, log)
	e.settlement = NewSettlementService(tx, calc, e.cache, e.notifier, log)
	e.seasons = NewSeasonService(tx, players, e.cache, log)
	e.leaderboard = NewLeaderboardService(players, calc, e.cache, log)
	e.matches = NewMatchService(matches, log)
	return e
}

func (e *env) register(t *testing.T, identity, name string) {
	t.Helper()
	if _, created, err := e.players.Register(context.Background(), identity, name); err != nil || !created {
		t.Fatalf("Register(%s) = %v, %v", identity, created, err)
	}
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, created, err := e.players.Register(ctx, "u1", " Alice ")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if !created || p.Name != "Alice" || p.MMR != domain.StartingMMR || p.SeasonID != domain.StartingSeason {
		t.Errorf("Register() = %+v, %v", p, created)
	}

	p, created, err = e.players.Register(ctx, "u1", "Other")
	if err != nil {
		t.Fatalf("duplicate Register() error: %v", err)
	}
	if created {
		t.Error("duplicate Register() reported created")
	}
	if p.Name != "Alice" {
		t.Errorf("duplicate Register() changed name to %q", p.Name)
	}

	if _, _, err := e.players.Register(ctx, "", "x"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Register(empty identity) error = %v, want ErrInvalidInput", err)
	}
}

func TestFinalize_AppliesDeltasAndCounters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")
	e.register(t, "u3", "Carol")

	res, err := e.settlement.Finalize(ctx, FinalizeRequest{
		Participants: []string{"Alice", "Bob", "Carol", "Ghost"},
		Roles: map[string]domain.Role{
			"Alice": domain.RoleHumanDefender,
			"Bob":   domain.RoleFirstInfected,
			"Carol": domain.RoleOtherInfected,
		},
		Kills:  map[string]int{"Alice": 2, "Bob": 1, "Carol": 2},
		Damage: map[string]int{"Alice": 500, "Carol": 40},
	})
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if res.Match.Winner != domain.SideDefenders {
		t.Errorf("winner = %s, want %s", res.Match.Winner, domain.SideDefenders)
	}
	if res.Updated != 3 {
		t.Errorf("Updated = %d, want 3", res.Updated)
	}
	if len(res.Participants) != 4 {
		t.Fatalf("got %d participant results, want 4", len(res.Participants))
	}

	wantDelta := map[string]int{"Alice": 34, "Bob": -12, "Carol": 3}
	for _, pr := range res.Participants[:3] {
		if pr.Skipped {
			t.Errorf("%s skipped: %s", pr.Name, pr.Reason)
		}
		if pr.Delta != wantDelta[pr.Name] {
			t.Errorf("%s delta = %d, want %d", pr.Name, pr.Delta, wantDelta[pr.Name])
		}
		if pr.NewMMR != domain.StartingMMR+pr.Delta || pr.OldMMR != domain.StartingMMR {
			t.Errorf("%s mmr %d -> %d", pr.Name, pr.OldMMR, pr.NewMMR)
		}
	}
	if res.Participants[0].Damage != 0 {
		t.Errorf("human damage = %d, want 0", res.Participants[0].Damage)
	}
	if !res.Participants[0].Survivor || res.Participants[1].Survivor {
		t.Error("survivor must follow the human defender role")
	}
	ghost := res.Participants[3]
	if !ghost.Skipped || ghost.Reason != SkipNotFound {
		t.Errorf("Ghost = %+v, want skipped not_found", ghost)
	}

	alice, _ := e.players.Get(ctx, "u1")
	if alice.MMR != 1034 || alice.WinsHuman != 1 || alice.KillsHuman != 2 || alice.Losses != 0 || alice.DamageDealt != 0 || alice.LastChange != 34 {
		t.Errorf("Alice = %+v", alice)
	}
	bob, _ := e.players.Get(ctx, "u2")
	if bob.MMR != 988 || bob.Losses != 1 || bob.KillsInfected != 1 || bob.WinsFirstInfected != 0 {
		t.Errorf("Bob = %+v", bob)
	}
	carol, _ := e.players.Get(ctx, "u3")
	if carol.MMR != 1003 || carol.Losses != 1 || carol.KillsInfected != 2 || carol.DamageDealt != 40 {
		t.Errorf("Carol = %+v", carol)
	}

	if len(res.RankChanges) != 1 {
		t.Fatalf("RankChanges = %+v, want one", res.RankChanges)
	}
	rc := res.RankChanges[0]
	if rc.Identity != "u2" || rc.OldRank != "Zombie" || rc.NewRank != "Survivor" || rc.Promoted {
		t.Errorf("rank change = %+v", rc)
	}
	if len(e.notifier.changes) != 1 || e.notifier.changes[0].ID != rc.ID {
		t.Errorf("notifier got %+v", e.notifier.changes)
	}
	if e.cache.invalidated == 0 {
		t.Error("leaderboard cache was not invalidated")
	}

	detail, err := e.matches.GetMatch(ctx, res.Match.MatchID)
	if err != nil {
		t.Fatalf("GetMatch() error: %v", err)
	}
	if len(detail.Participants) != 3 {
		t.Fatalf("stored %d participation rows, want 3", len(detail.Participants))
	}
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		if detail.Participants[i].Name != name || detail.Participants[i].MMRChange != wantDelta[name] {
			t.Errorf("participant %d = %+v", i, detail.Participants[i])
		}
	}
}

func TestFinalize_InfectedWin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")

	res, err := e.settlement.Finalize(ctx, FinalizeRequest{
		Participants: []string{"Alice", "Bob"},
		Roles: map[string]domain.Role{
			"Alice": domain.RoleFirstInfected,
			"Bob":   domain.RoleOtherInfected,
		},
		Kills: map[string]int{"Alice": 3, "Bob": 1},
		Map:   "Vertigo",
	})
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if res.Match.Winner != domain.SideInfected {
		t.Fatalf("winner = %s, want zombies", res.Match.Winner)
	}

	alice, _ := e.players.Get(ctx, "u1")
	if alice.WinsFirstInfected != 1 || alice.Losses != 0 {
		t.Errorf("Alice counters = %+v", alice)
	}
	bob, _ := e.players.Get(ctx, "u2")
	if bob.WinsFirstInfected != 0 || bob.Losses != 0 || bob.Wins() != 0 {
		t.Errorf("Bob counters = %+v", bob)
	}
}

func TestFinalize_EmptyStillCreatesMatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, participants := range [][]string{nil, {"Nobody", "Ghost"}} {
		res, err := e.settlement.Finalize(ctx, FinalizeRequest{Participants: participants})
		if err != nil {
			t.Fatalf("Finalize(%v) error: %v", participants, err)
		}
		if res.Updated != 0 {
			t.Errorf("Updated = %d, want 0", res.Updated)
		}
		if res.Match.MatchID == 0 {
			t.Fatal("match id not assigned")
		}
		m, err := e.matches.GetMatch(ctx, res.Match.MatchID)
		if err != nil {
			t.Fatalf("GetMatch() error: %v", err)
		}
		if len(m.Participants) != 0 {
			t.Errorf("stored %d participation rows, want 0", len(m.Participants))
		}
	}
}

var aliceDefends = map[string]domain.Role{"Alice": domain.RoleHumanDefender}

func TestFinalize_MissingRoleDefaultsToDefender(t *testing.T) {
	e := newEnv(t)
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")

	res, err := e.settlement.Finalize(context.Background(), FinalizeRequest{
		Participants: []string{"Alice", "Bob"},
		Roles:        map[string]domain.Role{"Bob": domain.RoleFirstInfected},
	})
	if err != nil {
		t.Fatal(err)
	}
	// only reported roles decide the winner
	if res.Match.Winner != domain.SideInfected {
		t.Errorf("winner = %s, want %s", res.Match.Winner, domain.SideInfected)
	}
	alice := res.Participants[0]
	if alice.Role != domain.RoleHumanDefender || !alice.Survivor || alice.Delta != -5 {
		t.Errorf("Alice = %+v, want defender scored on a loss (-5)", alice)
	}
	if res.Participants[1].Delta != 25 {
		t.Errorf("Bob delta = %d, want 25", res.Participants[1].Delta)
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name  string
		roles map[string]domain.Role
		want  domain.Side
	}{
		{"no roles", nil, domain.SideInfected},
		{"defender reported", map[string]domain.Role{"A": domain.RoleHumanDefender, "B": domain.RoleFirstInfected}, domain.SideDefenders},
		{"only infected", map[string]domain.Role{"A": domain.RoleOtherInfected, "B": domain.RoleFirstInfected}, domain.SideInfected},
		{"defender not listed as participant", map[string]domain.Role{"Z": domain.RoleHumanDefender}, domain.SideDefenders},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := FinalizeRequest{Participants: []string{"A", "B"}, Roles: tt.roles}
			if got := Winner(req); got != tt.want {
				t.Errorf("Winner() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFinalize_TrimsNamesConsistently(t *testing.T) {
	e := newEnv(t)
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")

	res, err := e.settlement.Finalize(context.Background(), FinalizeRequest{
		Participants: []string{"Alice", " Bob"},
		Roles:        map[string]domain.Role{"Alice": domain.RoleOtherInfected, "Bob ": domain.RoleFirstInfected},
		Kills:        map[string]int{"Bob": 3},
	})
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if res.Match.Winner != domain.SideInfected {
		t.Errorf("winner = %s, want %s", res.Match.Winner, domain.SideInfected)
	}
	bob := res.Participants[1]
	if bob.Name != "Bob" || bob.Identity != "u2" || bob.Role != domain.RoleFirstInfected || bob.Kills != 3 || bob.Delta != 34 {
		t.Errorf("Bob = %+v, want first infected with 3 kills (+34)", bob)
	}
}

func TestTrimKeys(t *testing.T) {
	got := trimKeys(map[string]int{" Bob": 1, "Bob": 2, "Alice ": 3})
	if got["Bob"] != 2 || got["Alice"] != 3 || len(got) != 2 {
		t.Errorf("trimKeys() = %v", got)
	}
	if trimKeys[int](nil) != nil {
		t.Error("trimKeys(nil) should stay nil")
	}
}

func TestFinalize_ChillMode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	if _, err := e.players.SetRanked(ctx, "u1", false); err != nil {
		t.Fatal(err)
	}

	res, err := e.settlement.Finalize(ctx, FinalizeRequest{
		Participants: []string{"Alice"},
		Kills:        map[string]int{"Alice": 5},
	})
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	pr := res.Participants[0]
	if !pr.Skipped || pr.Reason != SkipChillMode || pr.Delta != 0 {
		t.Errorf("participant = %+v, want chill-mode skip", pr)
	}
	if res.Updated != 0 {
		t.Errorf("Updated = %d, want 0", res.Updated)
	}

	alice, _ := e.players.Get(ctx, "u1")
	if alice.MMR != domain.StartingMMR || alice.KillsHuman != 0 || alice.Games() != 0 {
		t.Errorf("chill-mode player changed: %+v", alice)
	}

	detail, err := e.matches.GetMatch(ctx, res.Match.MatchID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Participants) != 1 || detail.Participants[0].MMRChange != 0 {
		t.Errorf("chill-mode participation = %+v", detail.Participants)
	}
}

func TestFinalize_DuplicateParticipant(t *testing.T) {
	e := newEnv(t)
	e.register(t, "u1", "Alice")

	res, err := e.settlement.Finalize(context.Background(), FinalizeRequest{Participants: []string{"Alice", "Alice"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 || res.Participants[1].Reason != SkipDuplicate {
		t.Errorf("result = %+v", res.Participants)
	}
}

func TestFinalize_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.settlement.Finalize(context.Background(), FinalizeRequest{
		Participants: []string{"Alice"},
		Roles:        map[string]domain.Role{"Alice": domain.Role(9)},
	})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}

	_, err = e.settlement.Finalize(context.Background(), FinalizeRequest{
		Participants: []string{"Alice"},
		Kills:        map[string]int{"Alice": -1},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestFinalize_NotifierFailureDoesNotFail(t *testing.T) {
	e := newEnv(t)
	e.notifier.err = errors.New("webhook down")
	e.register(t, "u1", "Alice")

	res, err := e.settlement.Finalize(context.Background(), FinalizeRequest{
		Participants: []string{"Alice"},
		Roles:        map[string]domain.Role{"Alice": domain.RoleOtherInfected},
	})
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if len(res.RankChanges) != 1 || len(e.notifier.changes) != 1 {
		t.Errorf("rank changes = %+v, notified %d", res.RankChanges, len(e.notifier.changes))
	}
}

func TestFinalize_ConcurrentSamePlayer(t *testing.T) {
	e := newEnv(t)
	e.register(t, "u1", "Alice")

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.settlement.Finalize(context.Background(), FinalizeRequest{Participants: []string{"Alice"}, Roles: aliceDefends})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Finalize() error: %v", err)
		}
	}

	alice, _ := e.players.Get(context.Background(), "u1")
	if want := domain.StartingMMR + n*30; alice.MMR != want {
		t.Errorf("MMR = %d, want %d (lost update)", alice.MMR, want)
	}
	if alice.WinsHuman != n {
		t.Errorf("WinsHuman = %d, want %d", alice.WinsHuman, n)
	}
}

func TestCounterDelta(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.Role
		winner domain.Side
		pr     ParticipantResult
		want   domain.PlayerDelta
	}{
		{
			"defender win", domain.RoleHumanDefender, domain.SideDefenders,
			ParticipantResult{Survivor: true, Kills: 2, Delta: 34},
			domain.PlayerDelta{MMR: 34, WinsHuman: 1, KillsHuman: 2},
		},
		{
			"defender loss", domain.RoleHumanDefender, domain.SideInfected,
			ParticipantResult{Survivor: true, Kills: 1, Delta: -3},
			domain.PlayerDelta{MMR: -3, Losses: 1, KillsHuman: 1},
		},
		{
			"first infected win", domain.RoleFirstInfected, domain.SideInfected,
			ParticipantResult{Kills: 3, Delta: 34},
			domain.PlayerDelta{MMR: 34, WinsFirstInfected: 1, KillsInfected: 3},
		},
		{
			"infected loss", domain.RoleOtherInfected, domain.SideDefenders,
			ParticipantResult{Kills: 1, Damage: 60, Delta: 2},
			domain.PlayerDelta{MMR: 2, Losses: 1, KillsInfected: 1, Damage: 60},
		},
		{
			"infected win is neither", domain.RoleOtherInfected, domain.SideInfected,
			ParticipantResult{Delta: -5},
			domain.PlayerDelta{MMR: -5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterDelta(tt.role, tt.winner, tt.pr); got != tt.want {
				t.Errorf("counterDelta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSeasonReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")
	if _, err := e.players.SetRanked(ctx, "u2", false); err != nil {
		t.Fatal(err)
	}
	if _, err := e.settlement.Finalize(ctx, FinalizeRequest{Participants: []string{"Alice"}, Roles: aliceDefends, Kills: map[string]int{"Alice": 4}}); err != nil {
		t.Fatal(err)
	}

	season, err := e.seasons.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if season != 2 {
		t.Errorf("Reset() = %d, want 2", season)
	}

	for _, id := range []string{"u1", "u2"} {
		p, err := e.players.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if p.MMR != domain.StartingMMR || p.LastChange != 0 || p.Games() != 0 || p.KillsHuman != 0 || p.SeasonID != 2 {
			t.Errorf("%s not reset: %+v", id, p)
		}
	}
	bob, _ := e.players.Get(ctx, "u2")
	if bob.Ranked {
		t.Error("reset cleared the ranked flag")
	}

	e.register(t, "u3", "Carol")
	carol, _ := e.players.Get(ctx, "u3")
	if carol.SeasonID != 2 {
		t.Errorf("new player season = %d, want 2", carol.SeasonID)
	}

	current, err := e.seasons.Current(ctx)
	if err != nil || current != 2 {
		t.Errorf("Current() = %d, %v", current, err)
	}
}

func TestLeaderboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")
	if _, err := e.settlement.Finalize(ctx, FinalizeRequest{
		Participants: []string{"Alice", "Bob"},
		Roles:        map[string]domain.Role{"Alice": domain.RoleHumanDefender, "Bob": domain.RoleFirstInfected},
	}); err != nil {
		t.Fatal(err)
	}

	lb, err := e.leaderboard.Top(ctx, 0)
	if err != nil {
		t.Fatalf("Top() error: %v", err)
	}
	if lb.Season != 1 || len(lb.Standings) != 2 {
		t.Fatalf("Top() = %+v", lb)
	}
	if lb.Standings[0].Name != "Alice" || lb.Standings[0].Rank != "Zombie" || lb.Standings[1].Rank != "Survivor" {
		t.Errorf("standings = %+v", lb.Standings)
	}

	if _, _, ok := e.cache.Get(ctx, 1, 10); !ok {
		t.Error("leaderboard was not cached under the default limit")
	}

	if err := e.players.Unlink(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	lb, err = e.leaderboard.Top(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lb.Standings) != 1 || lb.Standings[0].Identity != "u2" {
		t.Errorf("stale leaderboard after unlink: %+v", lb.Standings)
	}
}

// invalidatingCache lets a settlement land between the cache miss and the write.
type invalidatingCache struct {
	*memCache
}

func (c invalidatingCache) Get(ctx context.Context, season, limit int) ([]domain.Standing, int64, bool) {
	s, v, ok := c.memCache.Get(ctx, season, limit)
	if !ok {
		c.memCache.Invalidate(ctx)
	}
	return s, v, ok
}

func TestLeaderboard_InvalidatedDuringReadIsNotCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")

	lbs := NewLeaderboardService(e.players.players, e.calc, invalidatingCache{e.cache}, zerolog.Nop())
	if _, err := lbs.Top(ctx, 10); err != nil {
		t.Fatalf("Top() error: %v", err)
	}
	if _, _, ok := e.cache.Get(ctx, 1, 10); ok {
		t.Error("standings read before an invalidation were cached")
	}
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	e.register(t, "u2", "Bob")
	if _, err := e.settlement.Finalize(ctx, FinalizeRequest{
		Participants: []string{"Alice", "Bob"},
		Roles:        map[string]domain.Role{"Alice": domain.RoleHumanDefender, "Bob": domain.RoleOtherInfected},
		Kills:        map[string]int{"Alice": 2},
	}); err != nil {
		t.Fatal(err)
	}

	prof, err := e.players.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if prof.Wins != 1 || prof.Games != 1 || prof.WinRate != 100 || !prof.SeasonLeader || prof.Rank != "Zombie" {
		t.Errorf("profile = %+v", prof)
	}
	if want := e.calc.Tables().Ranks.Progress(prof.Player.MMR); prof.Progress != want {
		t.Errorf("Progress = %d, want %d", prof.Progress, want)
	}
	if len(prof.Recent) != 1 || prof.Recent[0].Participation.MMRChange != 34 {
		t.Errorf("Recent = %+v", prof.Recent)
	}

	bob, err := e.players.Profile(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if bob.SeasonLeader || bob.WinRate != 0 {
		t.Errorf("bob profile = %+v", bob)
	}

	if _, err := e.players.Profile(ctx, "ghost"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("Profile(ghost) error = %v, want ErrPlayerNotFound", err)
	}
}

func TestHistoryAfterUnlink(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "u1", "Alice")
	for i := 0; i < 3; i++ {
		if _, err := e.settlement.Finalize(ctx, FinalizeRequest{Participants: []string{"Alice"}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.players.Unlink(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if err := e.players.Unlink(ctx, "u1"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("second Unlink() error = %v, want ErrPlayerNotFound", err)
	}

	hist, err := e.matches.History(ctx, "u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("History() returned %d rows, want 2", len(hist))
	}
	if hist[0].Match.MatchID <= hist[1].Match.MatchID {
		t.Errorf("history not newest first: %d, %d", hist[0].Match.MatchID, hist[1].Match.MatchID)
	}
}

func TestCatalog(t *testing.T) {
	tables, err := ranking.Default()
	if err != nil {
		t.Fatal(err)
	}
	c := NewCatalogService(tables).Catalog()
	if len(c.Scenarios) == 0 || len(c.Ranks) != 5 {
		t.Errorf("catalog = %+v", c)
	}
	for _, size := range ranking.MapSizes {
		if len(c.Maps[size]) == 0 {
			t.Errorf("no %s maps", size)
		}
	}
}
