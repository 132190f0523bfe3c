package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// instant reads every timestamp encoding found in the collections: BSON
// dates, RFC 3339 strings, Firestore {seconds, nanoseconds} documents and
// epoch milliseconds. Unrecognised values decode to the zero time, which
// marks the record as malformed instead of failing the query.
type instant struct {
	time.Time
}

func newInstant(t *time.Time) *instant {
	if t == nil || t.IsZero() {
		return nil
	}
	return &instant{Time: *t}
}

func (i *instant) ptr() *time.Time {
	if i == nil || i.IsZero() {
		return nil
	}
	t := i.Time
	return &t
}

func (i instant) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if i.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(i.Time)
}

func (i *instant) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	i.Time = parseInstant(bson.RawValue{Type: t, Value: data})
	return nil
}

func parseInstant(rv bson.RawValue) time.Time {
	switch rv.Type {
	case bson.TypeDateTime:
		return rv.Time().UTC()
	case bson.TypeTimestamp:
		secs, _ := rv.Timestamp()
		return time.Unix(int64(secs), 0).UTC()
	case bson.TypeInt64:
		return time.UnixMilli(rv.Int64()).UTC()
	case bson.TypeInt32:
		return time.UnixMilli(int64(rv.Int32())).UTC()
	case bson.TypeString:
		t, err := time.Parse(time.RFC3339Nano, rv.StringValue())
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	case bson.TypeEmbeddedDocument:
		doc := rv.Document()
		secs, ok := wholeNumber(doc.Lookup("seconds"))
		if !ok {
			secs, ok = wholeNumber(doc.Lookup("_seconds"))
		}
		if !ok {
			return time.Time{}
		}
		nanos, ok := wholeNumber(doc.Lookup("nanoseconds"))
		if !ok {
			nanos, _ = wholeNumber(doc.Lookup("_nanoseconds"))
		}
		return time.Unix(secs, nanos).UTC()
	}
	return time.Time{}
}

func wholeNumber(rv bson.RawValue) (int64, bool) {
	switch rv.Type {
	case bson.TypeInt64:
		return rv.Int64(), true
	case bson.TypeInt32:
		return int64(rv.Int32()), true
	case bson.TypeDouble:
		return int64(rv.Double()), true
	}
	return 0, false
}

// docID is a document _id as a string. New documents use ObjectIDs;
// imported ones may carry their original string ids.
type docID string

func (d docID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, err := primitive.ObjectIDFromHex(string(d)); err == nil {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(d))
}

func (d *docID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeObjectID:
		*d = docID(rv.ObjectID().Hex())
	case bson.TypeString:
		*d = docID(rv.StringValue())
	default:
		*d = ""
	}
	return nil
}

// idFilter matches id whether it was stored as an ObjectID or a string.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}
