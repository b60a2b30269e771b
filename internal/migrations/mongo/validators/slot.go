package validators

import "go.mongodb.org/mongo-driver/bson"

var SlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"site_id",
			"start_time",
			"end_time",
			"reserved",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"site_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"reserved": bson.M{
				"bsonType": "bool",
			},

			"case_ref": bson.M{
				"bsonType": []string{"object", "null"},
				"required": []string{"kind", "id"},
				"properties": bson.M{
					"kind": bson.M{
						"enum": []string{"recueil_da", "demande_asile", "droit"},
					},
					"id": bson.M{
						"bsonType":  "string",
						"minLength": 1,
					},
				},
			},

			"margin": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"version": bson.M{
				"bsonType": "long",
				"minimum":  1,
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
