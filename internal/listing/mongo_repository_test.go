package listing

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilter(t *testing.T) {
	minRent, maxRent := 50000.0, 100000.0
	no := false

	tests := []struct {
		name string
		q    Query
		want bson.M
	}{
		{
			name: "baseline is active only",
			q:    Query{},
			want: bson.M{"status": "active"},
		},
		{
			name: "rent range",
			q:    Query{MinRent: &minRent, MaxRent: &maxRent},
			want: bson.M{"status": "active", "rentAmount": bson.M{"$gte": 50000.0, "$lte": 100000.0}},
		},
		{
			name: "substring filters are escaped and case-insensitive",
			q:    Query{State: "Lagos (Island)", Area: "v.i"},
			want: bson.M{
				"status": "active",
				"state":  primitive.Regex{Pattern: `Lagos \(Island\)`, Options: "i"},
				"area":   primitive.Regex{Pattern: `v\.i`, Options: "i"},
			},
		},
		{
			name: "exact filters",
			q:    Query{PropertyType: "Flat", Bedrooms: intPtr(3), Bathrooms: intPtr(2), InviteAgentToBid: &no},
			want: bson.M{
				"status":           "active",
				"propertyType":     "Flat",
				"bedrooms":         3,
				"bathrooms":        2,
				"inviteAgentToBid": false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mongoFilter(tt.q); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("mongoFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMutableFields(t *testing.T) {
	l, err := New(invitingInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Views = 42

	m, err := mutableFields(l)
	if err != nil {
		t.Fatalf("mutableFields: %v", err)
	}
	if _, ok := m["_id"]; ok {
		t.Error("_id must not be set")
	}
	if _, ok := m["views"]; ok {
		t.Error("views must be left to AddView")
	}
	if m["title"] != l.Title {
		t.Errorf("title = %v", m["title"])
	}

	l.InviteAgentToBid = false
	Normalize(l)
	m, err = mutableFields(l)
	if err != nil {
		t.Fatalf("mutableFields: %v", err)
	}
	if v, ok := m["agentInviteDetails"]; !ok || v != nil {
		t.Errorf("agentInviteDetails = %v, %v; want explicit null", v, ok)
	}
}
