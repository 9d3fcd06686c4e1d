package schema

// CatalogTrackTable represents the 'catalog.track' table
type CatalogTrackTable struct {
	Table           string
	ID              string
	ExternalID      string
	Title           string
	ArtistName      string
	DurationSeconds string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogTrack is the schema definition for catalog.track
var CatalogTrack = CatalogTrackTable{
	Table:           "catalog.track",
	ID:              "id",
	ExternalID:      "externalid",
	Title:           "title",
	ArtistName:      "artistname",
	DurationSeconds: "durationseconds",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// CatalogCollectionTrackTable represents the 'catalog.collectiontrack' join table
type CatalogCollectionTrackTable struct {
	Table        string
	CollectionID string
	TrackID      string
	Position     string
}

// CatalogCollectionTrack is the schema definition for catalog.collectiontrack
var CatalogCollectionTrack = CatalogCollectionTrackTable{
	Table:        "catalog.collectiontrack",
	CollectionID: "collectionid",
	TrackID:      "trackid",
	Position:     "position",
}
