package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_number",
			"customer_id",
			"tour_date",
			"party_size",
			"duration_hours",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"booking_number": bson.M{
				"bsonType":  "string",
				"minLength": 9,
				"maxLength": 32,
			},

			"customer_id": bson.M{
				"bsonType": "string",
			},

			"tour_date": bson.M{
				"bsonType": "date",
			},

			"party_size": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  50,
			},

			"duration_hours": bson.M{
				"bsonType": "int",
				"minimum":  4,
				"maximum":  24,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"draft",
					"pending",
					"confirmed",
					"completed",
					"cancelled",
				},
			},

			"cancellation_reason": bson.M{
				"bsonType": "string",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
