package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"barsandbios/internal/app/albums"
	"barsandbios/internal/app/artists"
	"barsandbios/internal/app/news"
	"barsandbios/internal/app/reviews"
	"barsandbios/internal/auth"
	"barsandbios/internal/store"
)

const demoPassword = "barsandbios-demo"

type demoAccount struct {
	Username string
	Email    string
	Role     auth.Role
}

var demoAccounts = []demoAccount{
	{Username: "editor", Email: "editor@barsandbios.dev", Role: auth.RoleAdmin},
	{Username: "critic", Email: "critic@barsandbios.dev", Role: auth.RoleReviewer},
	{Username: "listener", Email: "listener@barsandbios.dev", Role: auth.RoleUser},
}

// bootstrapDemoData seeds staff accounts and a small catalogue. It does
// nothing once the first demo account exists.
func bootstrapDemoData(ctx context.Context, st backend, app *application, logger zerolog.Logger) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	accounts := make([]store.User, 0, len(demoAccounts))
	for i, acct := range demoAccounts {
		u, err := st.CreateUser(ctx, store.User{
			Username:     acct.Username,
			Email:        acct.Email,
			PasswordHash: hash,
			Role:         acct.Role,
			IsVerified:   acct.Role != auth.RoleUser,
		})
		if errors.Is(err, store.ErrUserExists) && i == 0 {
			logger.Debug().Msg("demo data already present")
			return nil
		}
		if err != nil {
			return fmt.Errorf("bootstrap demo user %q: %w", acct.Username, err)
		}
		accounts = append(accounts, u)
	}

	editor := auth.Identity{UserID: accounts[0].ID, Role: accounts[0].Role}
	if err := ensureDemoCatalog(ctx, app, editor, accounts[1:]); err != nil {
		return err
	}

	logger.Info().Int("accounts", len(accounts)).Msg("demo data seeded")
	return nil
}

func ensureDemoCatalog(ctx context.Context, app *application, editor auth.Identity, reviewers []store.User) error {
	type seedAlbum struct {
		Title   string
		Type    string
		Date    time.Time
		Genres  []string
		Label   string
		Ratings []int
	}

	startYear := 1999
	artist, err := app.artists.Create(ctx, editor, artists.Input{
		Name:      "MF DOOM",
		RealName:  "Daniel Dumile",
		Bio:       "Masked villain of underground rap.",
		Genres:    []string{"hip hop", "underground"},
		Hometown:  "Long Island, NY",
		Labels:    []string{"Rhymesayers", "Stones Throw"},
		Featured:  true,
		Verified:  true,
		Followers: 1_200_000,
		ActiveStart: &startYear,
	})
	if err != nil {
		return fmt.Errorf("insert demo artist: %w", err)
	}

	seeds := []seedAlbum{
		{
			Title:   "Operation: Doomsday",
			Type:    "album",
			Date:    time.Date(1999, 4, 20, 0, 0, 0, 0, time.UTC),
			Genres:  []string{"hip hop"},
			Label:   "Fondle 'Em",
			Ratings: []int{5, 4},
		},
		{
			Title:   "Mm..Food",
			Type:    "album",
			Date:    time.Date(2004, 11, 16, 0, 0, 0, 0, time.UTC),
			Genres:  []string{"hip hop", "abstract"},
			Label:   "Rhymesayers",
			Ratings: []int{5, 5},
		},
		{
			Title:   "Special Herbs, Vol. 1",
			Type:    "mixtape",
			Date:    time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
			Genres:  []string{"instrumental"},
			Label:   "Female Fun",
			Ratings: []int{3},
		},
	}

	for _, seed := range seeds {
		album, err := app.albums.Create(ctx, editor, albums.Input{
			Title:       seed.Title,
			ArtistID:    artist.ID,
			Type:        seed.Type,
			ReleaseDate: seed.Date,
			Genres:      seed.Genres,
			Label:       seed.Label,
			Verified:    true,
		})
		if err != nil {
			return fmt.Errorf("insert demo album %q: %w", seed.Title, err)
		}

		for i, rating := range seed.Ratings {
			if i >= len(reviewers) {
				break
			}
			author := auth.Identity{UserID: reviewers[i].ID, Role: reviewers[i].Role}
			if _, err := app.reviews.Create(ctx, author, reviews.Input{
				AlbumID: album.ID,
				Rating:  rating,
				Title:   fmt.Sprintf("Notes on %s", seed.Title),
				Content: fmt.Sprintf("%s rewards repeat listens. The sample flips and the wordplay keep revealing new layers.", seed.Title),
				Tags:    seed.Genres,
			}); err != nil {
				return fmt.Errorf("insert demo review for %q: %w", seed.Title, err)
			}
		}
	}

	published := time.Now().UTC()
	if _, err := app.news.Create(ctx, editor, news.Input{
		Title:       "Bars & Bios Opens Its Doors",
		Excerpt:     "Reviews, artist bios and release news in one place.",
		Content:     "Welcome to Bars & Bios. Browse the catalogue, read the latest reviews and leave your own rating.",
		Category:    "industry",
		Tags:        []string{"announcement"},
		Featured:    true,
		Published:   true,
		PublishDate: &published,
	}); err != nil {
		return fmt.Errorf("insert demo news: %w", err)
	}
	return nil
}
