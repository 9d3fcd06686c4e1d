package schema

// CatalogCollectionTable represents the 'catalog.collection' table (albums and playlists).
type CatalogCollectionTable struct {
	Table            string
	ID               string
	ExternalID       string
	Kind             string
	ArtistKey        string
	Title            string
	Subtitle         string
	ThumbnailURL     string
	ExpectedTracks   string
	EmptyBrowseCount string
	IsUnstable       string
	CreatedAt        string
	UpdatedAt        string
}

// CatalogCollection is the schema definition for catalog.collection
var CatalogCollection = CatalogCollectionTable{
	Table:            "catalog.collection",
	ID:               "id",
	ExternalID:       "externalid",
	Kind:             "kind",
	ArtistKey:        "artistkey",
	Title:            "title",
	Subtitle:         "subtitle",
	ThumbnailURL:     "thumbnailurl",
	ExpectedTracks:   "expectedtracks",
	EmptyBrowseCount: "emptybrowsecount",
	IsUnstable:       "isunstable",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
}
