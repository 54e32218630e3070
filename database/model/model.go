// Package model defines the database models for the harmonia server.
package model

import "time"

// User is a library account. Accounts are created disabled and must be
// enabled by an administrator before the account can act on issued tokens.
type User struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash, never the plaintext
	DeviceId  string    `json:"deviceId"`
	Enabled   bool      `json:"enabled" gorm:"default:false"`
	IsAdmin   bool      `json:"isAdmin" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Server is a remote music server (Jellyfin, Navidrome, Subsonic...) the
// library proxies to.
type Server struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Url       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ServerFolder is a music folder exposed by a Server.
type ServerFolder struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	ServerId  string    `json:"serverId" gorm:"index;not null"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ServerPermission grants a user access to a server.
type ServerPermission struct {
	Id       string `json:"id" gorm:"primaryKey"`
	UserId   string `json:"userId" gorm:"index;not null"`
	ServerId string `json:"serverId" gorm:"not null"`
}

// ServerFolderPermission grants a user access to a single folder of a server.
type ServerFolderPermission struct {
	Id             string `json:"id" gorm:"primaryKey"`
	UserId         string `json:"userId" gorm:"index;not null"`
	ServerFolderId string `json:"serverFolderId" gorm:"not null"`
}

// RefreshToken is one outstanding refresh token. A token absent from this
// table is invalid even while its signature still verifies.
type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserId    string    `json:"userId" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
