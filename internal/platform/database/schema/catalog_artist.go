package schema

// CatalogArtistTable represents the 'catalog.artist' table.
//
// A row with a NULL ChannelID is an unresolved candidate in the backlog.
type CatalogArtistTable struct {
	Table                string
	ArtistKey            string
	DisplayName          string
	NormalizedName       string
	ChannelID            string
	Description          string
	ThumbnailURL         string
	LastResolveAttemptAt string
	CreatedAt            string
	UpdatedAt            string
}

// CatalogArtist is the schema definition for catalog.artist
var CatalogArtist = CatalogArtistTable{
	Table:                "catalog.artist",
	ArtistKey:            "artistkey",
	DisplayName:          "displayname",
	NormalizedName:       "normalizedname",
	ChannelID:            "channelid",
	Description:          "description",
	ThumbnailURL:         "thumbnailurl",
	LastResolveAttemptAt: "lastresolveattemptat",
	CreatedAt:            "createdat",
	UpdatedAt:            "updatedat",
}
