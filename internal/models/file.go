package models

import "time"

// File is a row in the files table. StoredName is the opaque key of the
// blob on disk, unrelated to the display name. Rows are soft-deleted only.
type File struct {
	ID           int64     `json:"id" db:"id"`
	OwnerID      int64     `json:"idUser" db:"id_user"`
	FileName     string    `json:"fileName" db:"file_name"`
	StoredName   string    `json:"-" db:"stored_name"`
	PasswordHash *string   `json:"-" db:"file_password"`
	Deleted      bool      `json:"deleted" db:"deleted"`
	CreatedAt    time.Time `json:"creationDate" db:"creation_date"`
	ExpiresAt    time.Time `json:"endDate" db:"end_date"`
}

// IsExpired reports whether the file's end date has elapsed at the given
// instant. Expiry is evaluated at read time, never by a background job.
func (f *File) IsExpired(now time.Time) bool {
	return f.ExpiresAt.Before(now)
}
