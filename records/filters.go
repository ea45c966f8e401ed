package records

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// StatusCompleted is the status value that triggers completion stamping.
const StatusCompleted = "completed"

// StatusIs matches records whose status equals the given value.
func StatusIs(status string) bson.M {
	return bson.M{"status": status}
}

// OwnedBy matches records owned by the given actor.
func OwnedBy(ownerID string) bson.M {
	return bson.M{"owner": ownerID}
}

// OnOrAfter matches records whose time field is at or after the given instant.
func OnOrAfter(field string, t time.Time) bson.M {
	return bson.M{field: bson.M{"$gte": t}}
}

// Between matches records whose time field falls in [from, to).
func Between(field string, from, to time.Time) bson.M {
	return bson.M{field: bson.M{"$gte": from, "$lt": to}}
}

// Merge combines filters into a single document. Later filters win on key
// collisions; the inputs are not mutated.
func Merge(filters ...bson.M) bson.M {
	merged := bson.M{}
	for _, filter := range filters {
		for key, value := range filter {
			merged[key] = value
		}
	}
	return merged
}
