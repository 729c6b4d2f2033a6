package model

import "time"

// DateLock is the advisory lock document serializing booking creation for a
// single tour date. The unique _id makes the insert the acquisition; the TTL
// index on expires_at reclaims locks abandoned by a crashed process.
type DateLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
