package validators

import "go.mongodb.org/mongo-driver/bson"

var QueuedOperationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"status",
			"attempts",
			"max_attempts",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"payload": bson.M{
				"bsonType": "object",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"processing",
					"completed",
					"failed",
					"dead_letter",
				},
			},

			"attempts": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"max_attempts": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"next_retry_at": bson.M{
				"bsonType": "date",
			},

			"last_error": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"completed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
