package store

import "barsandbios/internal/pagination"

// List specs shared by the Postgres and memory stores. Field params double
// as accessor keys for the in-memory evaluator.
var (
	ReviewActiveField = pagination.Field{Param: "isActive", Column: "is_active", Kind: pagination.Exact, Type: pagination.Bool}
	ReviewAlbumField  = pagination.Field{Param: "albumId", Column: "album_id", Kind: pagination.Exact, Type: pagination.Int}

	ReviewSpec = pagination.Spec{
		Sorts: map[string]string{
			"createdAt": "created_at",
			"updatedAt": "updated_at",
			"rating":    "rating",
			"likes":     "likes_count",
			"title":     "title",
		},
		Search: []pagination.Field{
			{Param: "title", Column: "title"},
			{Param: "content", Column: "content"},
		},
		Fields: []pagination.Field{
			ReviewAlbumField,
			{Param: "authorId", Column: "author_id", Kind: pagination.Exact, Type: pagination.Int},
			{Param: "rating", Column: "rating", Kind: pagination.Range, Type: pagination.Int},
			{Param: "featured", Column: "featured", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "verified", Column: "verified", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "tag", Column: "tags", Kind: pagination.JSONContains, Type: pagination.String},
		},
	}

	UserSpec = pagination.Spec{
		Sorts: map[string]string{
			"createdAt": "created_at",
			"updatedAt": "updated_at",
			"username":  "username",
			"email":     "email",
			"firstName": "first_name",
			"lastName":  "last_name",
		},
		Search: []pagination.Field{
			{Param: "username", Column: "username"},
			{Param: "email", Column: "email"},
			{Param: "firstName", Column: "first_name"},
			{Param: "lastName", Column: "last_name"},
		},
		Fields: []pagination.Field{
			{Param: "role", Column: "role", Kind: pagination.Exact, Type: pagination.String},
			{Param: "isVerified", Column: "is_verified", Kind: pagination.Exact, Type: pagination.Bool},
		},
	}

	ArtistSpec = pagination.Spec{
		Sorts: map[string]string{
			"createdAt":        "created_at",
			"updatedAt":        "updated_at",
			"name":             "name",
			"followers":        "followers",
			"monthlyListeners": "monthly_listeners",
		},
		Search: []pagination.Field{
			{Param: "name", Column: "name"},
			{Param: "stageName", Column: "stage_name"},
			{Param: "realName", Column: "real_name"},
		},
		Fields: []pagination.Field{
			{Param: "genre", Column: "genres", Kind: pagination.JSONContains, Type: pagination.String},
			{Param: "hometown", Column: "hometown", Kind: pagination.Contains, Type: pagination.String},
			{Param: "featured", Column: "featured", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "verified", Column: "verified", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "followers", Column: "followers", Kind: pagination.Range, Type: pagination.Int},
		},
	}

	AlbumSpec = pagination.Spec{
		Sorts: map[string]string{
			"createdAt":     "created_at",
			"updatedAt":     "updated_at",
			"title":         "title",
			"releaseDate":   "release_date",
			"averageRating": "average_rating",
			"totalReviews":  "total_reviews",
		},
		Search: []pagination.Field{
			{Param: "title", Column: "title"},
			{Param: "description", Column: "description"},
		},
		Fields: []pagination.Field{
			{Param: "artistId", Column: "artist_id", Kind: pagination.Exact, Type: pagination.Int},
			{Param: "type", Column: "type", Kind: pagination.Exact, Type: pagination.String},
			{Param: "genre", Column: "genres", Kind: pagination.JSONContains, Type: pagination.String},
			{Param: "featured", Column: "featured", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "rating", Column: "average_rating", Kind: pagination.Range, Type: pagination.Float},
			{Param: "releaseDate", Column: "release_date", Kind: pagination.Range, Type: pagination.Time},
		},
	}

	NewsSpec = pagination.Spec{
		Sorts: map[string]string{
			"createdAt":   "created_at",
			"updatedAt":   "updated_at",
			"publishDate": "publish_date",
			"views":       "views",
			"title":       "title",
		},
		Search: []pagination.Field{
			{Param: "title", Column: "title"},
			{Param: "excerpt", Column: "excerpt"},
			{Param: "content", Column: "content"},
		},
		Fields: []pagination.Field{
			{Param: "category", Column: "category", Kind: pagination.Exact, Type: pagination.String},
			{Param: "authorId", Column: "author_id", Kind: pagination.Exact, Type: pagination.Int},
			{Param: "featured", Column: "featured", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "published", Column: "published", Kind: pagination.Exact, Type: pagination.Bool},
			{Param: "tag", Column: "tags", Kind: pagination.JSONContains, Type: pagination.String},
		},
	}
)
