package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceHealthValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"consecutive_failures",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"consecutive_failures": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"last_failure_at": bson.M{
				"bsonType": "date",
			},

			"last_success_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
