package domain

// Post is the create-post request sent to a WordPress site.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// CreatedPost is the success side of a WordPress create-post call.
type CreatedPost struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

// SheetRow is one parsed spreadsheet record; every field is optional.
type SheetRow struct {
	Title    string
	Content  string
	Keywords string
	Website  string
}
