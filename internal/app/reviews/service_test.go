package reviews

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barsandbios/internal/apperr"
	"barsandbios/internal/app/ratings"
	"barsandbios/internal/auth"
	"barsandbios/internal/pagination"
	"barsandbios/internal/store"
)

var longContent = strings.Repeat("The drums knock and the samples breathe. ", 5)

type countingAggregator struct {
	inner ratings.Aggregator
	calls []int64
}

func (c *countingAggregator) Recompute(ctx context.Context, albumID int64) (ratings.Summary, error) {
	c.calls = append(c.calls, albumID)
	return c.inner.Recompute(ctx, albumID)
}

type fixture struct {
	mem    *store.Memory
	agg    *countingAggregator
	svc    Service
	album  store.Album
	users  []auth.Identity
	admin  auth.Identity
	critic auth.Identity
}

func newFixture(t *testing.T, reviewers int) fixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	artist, err := mem.CreateArtist(ctx, store.Artist{Name: "Madvillain"})
	require.NoError(t, err)
	album, err := mem.CreateAlbum(ctx, store.Album{
		Title:       "Madvillainy",
		ArtistID:    artist.ID,
		Type:        store.AlbumTypeAlbum,
		ReleaseDate: time.Date(2004, 3, 23, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	f := fixture{mem: mem, album: album}
	for i := 0; i < reviewers; i++ {
		name := "user" + string(rune('a'+i))
		u, err := mem.CreateUser(ctx, store.User{Username: name, Email: name + "@example.com", Role: auth.RoleUser})
		require.NoError(t, err)
		f.users = append(f.users, auth.Identity{UserID: u.ID, Role: u.Role})
	}
	admin, err := mem.CreateUser(ctx, store.User{Username: "admin", Email: "admin@example.com", Role: auth.RoleAdmin})
	require.NoError(t, err)
	f.admin = auth.Identity{UserID: admin.ID, Role: admin.Role}
	critic, err := mem.CreateUser(ctx, store.User{Username: "critic", Email: "critic@example.com", Role: auth.RoleReviewer})
	require.NoError(t, err)
	f.critic = auth.Identity{UserID: critic.ID, Role: critic.Role}

	f.agg = &countingAggregator{inner: ratings.New(mem, zerolog.Nop())}
	f.svc = New(mem, f.agg, zerolog.Nop())
	return f
}

func (f fixture) create(t *testing.T, caller auth.Identity, rating int) View {
	t.Helper()
	v, err := f.svc.Create(context.Background(), caller, Input{
		AlbumID: f.album.ID,
		Rating:  rating,
		Title:   "A take",
		Content: longContent,
	})
	require.NoError(t, err)
	return v
}

func (f fixture) aggregate(t *testing.T) (float64, int) {
	t.Helper()
	a, err := f.mem.AlbumByID(context.Background(), f.album.ID)
	require.NoError(t, err)
	return a.AverageRating, a.TotalReviews
}

func TestCreateAndSoftDeleteKeepAggregateInStep(t *testing.T) {
	f := newFixture(t, 3)

	f.create(t, f.users[0], 5)
	second := f.create(t, f.users[1], 3)
	f.create(t, f.users[2], 4)

	avg, total := f.aggregate(t)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 3, total)

	require.NoError(t, f.svc.Delete(context.Background(), f.users[1], second.ID))

	avg, total = f.aggregate(t)
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 2, total)

	_, err := f.svc.Get(context.Background(), second.ID, auth.Identity{})
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestCreatePopulatesViewAndReadTime(t *testing.T) {
	f := newFixture(t, 1)

	v := f.create(t, f.users[0], 4)

	assert.Equal(t, f.album.ID, v.Album.ID)
	assert.Equal(t, "Madvillainy", v.Album.Title)
	assert.Equal(t, "usera", v.Author.Username)
	assert.Equal(t, store.ReadTime(longContent), v.ReadTime)
	require.NotNil(t, v.IsLikedByUser)
	assert.False(t, *v.IsLikedByUser)
}

func TestDuplicateReviewLeavesAggregateUntouched(t *testing.T) {
	f := newFixture(t, 1)
	f.create(t, f.users[0], 4)
	calls := len(f.agg.calls)

	_, err := f.svc.Create(context.Background(), f.users[0], Input{
		AlbumID: f.album.ID,
		Rating:  1,
		Title:   "Changed my mind",
		Content: longContent,
	})
	assert.ErrorIs(t, err, store.ErrDuplicateReview)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	avg, total := f.aggregate(t)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 1, total)
	assert.Len(t, f.agg.calls, calls)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	tests := []struct {
		name string
		in   Input
		want error
	}{
		{name: "rating too high", in: Input{AlbumID: f.album.ID, Rating: 6, Title: "t", Content: longContent}},
		{name: "content too short", in: Input{AlbumID: f.album.ID, Rating: 3, Title: "t", Content: "short"}},
		{name: "content short once trimmed", in: Input{AlbumID: f.album.ID, Rating: 3, Title: "t", Content: strings.Repeat(" ", 120) + "short"}},
		{name: "blank title", in: Input{AlbumID: f.album.ID, Rating: 3, Title: "   ", Content: longContent}},
		{name: "too many pros", in: Input{AlbumID: f.album.ID, Rating: 3, Title: "t", Content: longContent, Pros: make([]string, 11)}},
		{name: "long highlight", in: Input{AlbumID: f.album.ID, Rating: 3, Title: "t", Content: longContent, Highlights: []string{strings.Repeat("x", 201)}}},
		{name: "rating zero", in: Input{AlbumID: f.album.ID, Rating: 0, Title: "t", Content: longContent}},
		{name: "missing album", in: Input{AlbumID: 999, Rating: 3, Title: "t", Content: longContent}, want: store.ErrAlbumNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.users[0], tc.in)
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	_, err := f.svc.Create(ctx, auth.Identity{}, Input{AlbumID: f.album.ID, Rating: 3, Title: "t", Content: longContent})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateValidatesMergedReview(t *testing.T) {
	f := newFixture(t, 1)
	v := f.create(t, f.users[0], 4)
	ctx := context.Background()
	calls := len(f.agg.calls)

	rating := 9
	_, err := f.svc.Update(ctx, f.users[0], v.ID, Patch{Rating: &rating})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	short := "too short now"
	_, err = f.svc.Update(ctx, f.users[0], v.ID, Patch{Content: &short})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	cons := make([]string, 11)
	for i := range cons {
		cons[i] = "muddy mix"
	}
	_, err = f.svc.Update(ctx, f.users[0], v.ID, Patch{Cons: &cons})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stored, err := f.mem.ReviewByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, strings.TrimSpace(longContent), stored.Content)
	assert.Empty(t, stored.Cons)
	assert.Len(t, f.agg.calls, calls)

	title := "  Padded  "
	updated, err := f.svc.Update(ctx, f.users[0], v.ID, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Padded", updated.Title)
}

func TestUpdateByOtherUserIsForbidden(t *testing.T) {
	f := newFixture(t, 2)
	v := f.create(t, f.users[0], 4)
	calls := len(f.agg.calls)

	rating := 1
	title := "Hijacked"
	_, err := f.svc.Update(context.Background(), f.users[1], v.ID, Patch{Rating: &rating, Title: &title})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	stored, err := f.mem.ReviewByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, "A take", stored.Title)
	assert.Len(t, f.agg.calls, calls)
}

func TestUpdateRecomputesOnlyWhenRatingSet(t *testing.T) {
	f := newFixture(t, 1)
	v := f.create(t, f.users[0], 4)
	calls := len(f.agg.calls)

	title := "Retitled"
	updated, err := f.svc.Update(context.Background(), f.users[0], v.ID, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Retitled", updated.Title)
	assert.Len(t, f.agg.calls, calls)

	rating := 2
	_, err = f.svc.Update(context.Background(), f.users[0], v.ID, Patch{Rating: &rating})
	require.NoError(t, err)
	assert.Len(t, f.agg.calls, calls+1)

	avg, total := f.aggregate(t)
	assert.Equal(t, 2.0, avg)
	assert.Equal(t, 1, total)
}

func TestModeratorCanEditAndFeature(t *testing.T) {
	f := newFixture(t, 1)
	v := f.create(t, f.users[0], 4)

	featured := true
	_, err := f.svc.Update(context.Background(), f.users[0], v.ID, Patch{Featured: &featured})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := f.svc.Update(context.Background(), f.critic, v.ID, Patch{Featured: &featured})
	require.NoError(t, err)
	assert.True(t, updated.Featured)
}

func TestPurgeRequiresHardDelete(t *testing.T) {
	f := newFixture(t, 2)
	first := f.create(t, f.users[0], 2)
	f.create(t, f.users[1], 4)

	assert.ErrorIs(t, f.svc.Purge(context.Background(), f.critic, first.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, f.svc.Purge(context.Background(), f.users[0], first.ID), apperr.ErrForbidden)

	require.NoError(t, f.svc.Purge(context.Background(), f.admin, first.ID))
	_, err := f.mem.ReviewByID(context.Background(), first.ID)
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	avg, total := f.aggregate(t)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 1, total)
}

func TestListShowsOnlyActiveReviewsSorted(t *testing.T) {
	f := newFixture(t, 5)
	var ids []int64
	for i, rating := range []int{1, 5, 3, 2, 4} {
		ids = append(ids, f.create(t, f.users[i], rating).ID)
	}
	require.NoError(t, f.svc.Delete(context.Background(), f.users[1], ids[1]))

	filter := pagination.Filter{}.Where(store.ReviewAlbumField, f.album.ID)
	req := pagination.Request{Page: 1, Limit: 2, SortBy: "rating", SortOrder: pagination.Asc}

	page, err := f.svc.List(context.Background(), filter, req, auth.Identity{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Items[0].Rating)
	assert.Equal(t, 2, page.Items[1].Rating)
	assert.Nil(t, page.Items[0].IsLikedByUser)
	assert.Equal(t, 4, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)

	req.Page = 3
	page, err = f.svc.List(context.Background(), filter, req, auth.Identity{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 4, page.Meta.Total)
}

func TestToggleLikeAndDislike(t *testing.T) {
	f := newFixture(t, 2)
	v := f.create(t, f.users[0], 5)
	fan := f.users[1]
	ctx := context.Background()

	got, err := f.svc.ToggleDislike(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DislikesCount)
	assert.True(t, *got.IsDislikedByUser)

	got, err = f.svc.ToggleLike(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 0, got.DislikesCount)
	assert.True(t, *got.IsLikedByUser)
	assert.False(t, *got.IsDislikedByUser)

	got, err = f.svc.ToggleLike(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)

	_, err = f.svc.ToggleLike(ctx, auth.Identity{}, v.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

type missingAlbumAggregator struct{}

func (missingAlbumAggregator) Recompute(context.Context, int64) (ratings.Summary, error) {
	return ratings.Summary{}, ratings.ErrAlbumMissing
}

func TestMissingAlbumDuringRecomputeDoesNotFailWrite(t *testing.T) {
	f := newFixture(t, 1)
	svc := New(f.mem, missingAlbumAggregator{}, zerolog.Nop())

	v, err := svc.Create(context.Background(), f.users[0], Input{
		AlbumID: f.album.ID,
		Rating:  3,
		Title:   "Still saved",
		Content: longContent,
	})
	require.NoError(t, err)
	assert.NotZero(t, v.ID)
}
