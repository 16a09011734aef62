package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"recipehub/models"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	doc := *c
	doc.Author = nil
	_, err := s.Comments.InsertOne(ctx, doc)
	return translate(err)
}

func (s *Store) CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := s.Comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) SaveComment(ctx context.Context, c *models.Comment) error {
	doc := *c
	doc.Author = nil
	res, err := s.Comments.ReplaceOne(ctx, bson.M{"_id": c.ID}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"post": postID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	pipeline = append(pipeline, populateUser("author", bson.M{
		"firstName": 1,
		"lastName":  1,
		"email":     1,
	})...)

	cursor, err := s.Comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) CommentIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return distinctIDs(ctx, s.Comments, bson.M{"user": userID})
}

func (s *Store) DeleteCommentsByPosts(ctx context.Context, postIDs []primitive.ObjectID) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res, err := s.Comments.DeleteMany(ctx, bson.M{"post": bson.M{"$in": postIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteCommentsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.Comments.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
