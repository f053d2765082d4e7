package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"MChat/service/mgo"
)

const UserTableName = "user"

// User is the durable account document. The realtime core only ever holds
// the Snapshot part, cached on the session at connect time.
type User struct {
	UserID     string    `bson:"user_id"`  // PK
	Username   string    `bson:"username"` // unique login name
	Password   string    `bson:"password"` // bcrypt hash
	Nickname   string    `bson:"nickname"`
	FaceURL    string    `bson:"face_url"` // avatar
	CreateTime time.Time `bson:"create_time"`
}

// Snapshot is the display subset attached to outbound messages.
type Snapshot struct {
	UserID   string `bson:"user_id" json:"userId"`
	Nickname string `bson:"nickname" json:"name"`
	FaceURL  string `bson:"face_url" json:"avatar"`
}

func (*User) TableName() string { return UserTableName }

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(UserTableName)
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{UserID: u.UserID, Nickname: u.Nickname, FaceURL: u.FaceURL}
}

// FindByID loads a user document by id.
func FindByID(ctx context.Context, userID string) (*User, error) {
	var u User
	err := u.Collection().FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername loads a user document by login name.
func FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := u.Collection().FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
