package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipehub/models"
)

func (s *Store) CreateRecipe(ctx context.Context, p *models.RecipePost) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	doc := *p
	doc.Author = nil
	_, err := s.RecipePosts.InsertOne(ctx, doc)
	return translate(err)
}

func (s *Store) RecipeByID(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error) {
	var p models.RecipePost
	if err := s.RecipePosts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) SaveRecipe(ctx context.Context, p *models.RecipePost) error {
	doc := *p
	doc.Author = nil
	res, err := s.RecipePosts.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error) {
	var p models.RecipePost
	if err := s.RecipePosts.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) RecipesByAuthors(ctx context.Context, authors []primitive.ObjectID, page *Page) ([]models.RecipePost, error) {
	posts := []models.RecipePost{}
	if len(authors) == 0 {
		return posts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": bson.M{"$in": authors}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if page != nil {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: page.Skip}},
			bson.D{{Key: "$limit", Value: page.Limit}},
		)
	}
	pipeline = append(pipeline, populateUser("author", bson.M{
		"firstName":   1,
		"lastName":    1,
		"profileType": 1,
	})...)

	cursor, err := s.RecipePosts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) RecipeIDsByAuthor(ctx context.Context, author primitive.ObjectID) ([]primitive.ObjectID, error) {
	return distinctIDs(ctx, s.RecipePosts, bson.M{"user": author})
}

func (s *Store) DeleteRecipesByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	res, err := s.RecipePosts.DeleteMany(ctx, bson.M{"user": author})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) IncrementRecipe(ctx context.Context, id primitive.ObjectID, counter RecipeCounter) (*models.RecipePost, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.RecipePost
	err := s.RecipePosts.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{string(counter): 1}},
		opts,
	).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := s.RecipePosts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"comments": commentID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) RemoveCommentRefs(ctx context.Context, commentIDs []primitive.ObjectID) error {
	if len(commentIDs) == 0 {
		return nil
	}
	_, err := s.RecipePosts.UpdateMany(ctx,
		bson.M{"comments": bson.M{"$in": commentIDs}},
		bson.M{"$pull": bson.M{"comments": bson.M{"$in": commentIDs}}},
	)
	return err
}

// populateUser expands the "user" reference into the field named as,
// keeping only the projected user fields. Dangling references leave the
// field unset.
func populateUser(as string, fields bson.M) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "user",
			"foreignField": "_id",
			"pipeline":     bson.A{bson.M{"$project": fields}},
			"as":           as,
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$" + as,
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

func distinctIDs(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]primitive.ObjectID, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}
