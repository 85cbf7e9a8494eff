package listing

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores listings as documents in one collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository uses the "listings" collection of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection("listings")}
}

// EnsureIndexes creates the indexes the public search relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "rentAmount", Value: 1}}},
		{Keys: bson.D{{Key: "creator.id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating listing indexes: %w", err)
	}
	return nil
}

// Create inserts a new listing.
func (r *MongoRepository) Create(ctx context.Context, l *Listing) error {
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	return nil
}

// Get returns a listing by its ID.
func (r *MongoRepository) Get(ctx context.Context, id string) (*Listing, error) {
	var l Listing
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing %s: %w", id, err)
	}
	l.fillEmpty()
	return &l, nil
}

// Mutate applies fn to the stored listing and writes it back if its
// version has not moved. The view counter is left to AddView.
func (r *MongoRepository) Mutate(ctx context.Context, id string, fn func(*Listing) error) (*Listing, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version = current.Version + 1

	set, err := mutableFields(next)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": id, "version": current.Version}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("updating listing %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrConflict
	}
	return next, nil
}

// mutableFields is l as a document without _id and views.
func mutableFields(l *Listing) (bson.M, error) {
	raw, err := bson.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encoding listing %s: %w", l.ID, err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encoding listing %s: %w", l.ID, err)
	}
	delete(m, "_id")
	delete(m, "views")
	// omitempty drops cleared optionals, so clear them explicitly.
	if l.AgentInviteDetails == nil {
		m["agentInviteDetails"] = nil
	}
	if l.SelectedAgent == nil {
		m["selectedAgent"] = nil
	}
	return m, nil
}

// Delete removes id if check accepts the stored listing and it has not
// changed since it was loaded.
func (r *MongoRepository) Delete(ctx context.Context, id string, check func(*Listing) error) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := check(current); err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "version": current.Version})
	if err != nil {
		return fmt.Errorf("deleting listing %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrConflict
	}
	return nil
}

// AddView bumps the view counter without touching the version.
func (r *MongoRepository) AddView(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("counting view on %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List runs the public search.
func (r *MongoRepository) List(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalized()
	filter := mongoFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting listings: %w", err)
	}

	field, desc, _ := parseSort(q.Sort)
	dir := 1
	if desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.PageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	listings := []*Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("decoding listings: %w", err)
	}
	for _, l := range listings {
		l.fillEmpty()
	}

	return &Page{Listings: listings, Pagination: newPagination(q, total)}, nil
}

// mongoFilter translates q into a document filter.
func mongoFilter(q Query) bson.M {
	filter := bson.M{"status": string(StatusActive)}

	contains := func(field, v string) {
		if v != "" {
			filter[field] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
		}
	}
	contains("state", q.State)
	contains("locality", q.Locality)
	contains("area", q.Area)

	if q.PropertyType != "" {
		filter["propertyType"] = q.PropertyType
	}
	if q.Bedrooms != nil {
		filter["bedrooms"] = *q.Bedrooms
	}
	if q.Bathrooms != nil {
		filter["bathrooms"] = *q.Bathrooms
	}
	if q.InviteAgentToBid != nil {
		filter["inviteAgentToBid"] = *q.InviteAgentToBid
	}

	rent := bson.M{}
	if q.MinRent != nil {
		rent["$gte"] = *q.MinRent
	}
	if q.MaxRent != nil {
		rent["$lte"] = *q.MaxRent
	}
	if len(rent) > 0 {
		filter["rentAmount"] = rent
	}

	return filter
}
