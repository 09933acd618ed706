package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ClassesColumns holds the columns for the "classes" table.
	ClassesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	ClassesTable = &schema.Table{
		Name:       "classes",
		Columns:    ClassesColumns,
		PrimaryKey: []*schema.Column{ClassesColumns[0]},
	}

	// StudentProfilesColumns holds the columns for the "student_profiles" table.
	// Dimensions are plain strings so an incomplete profile can be stored and later skipped.
	StudentProfilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "profile_name", Type: field.TypeString, Size: 100},
		{Name: "fragmentacao", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "abstracao", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "mediacao", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "dislexia", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "tipo_letra", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "observacoes", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "class_id", Type: field.TypeUUID},
	}
	StudentProfilesTable = &schema.Table{
		Name:       "student_profiles",
		Columns:    StudentProfilesColumns,
		PrimaryKey: []*schema.Column{StudentProfilesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "student_profiles_classes_profiles",
				Columns:    []*schema.Column{StudentProfilesColumns[10]},
				RefColumns: []*schema.Column{ClassesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "studentprofile_class_id",
				Unique:  false,
				Columns: []*schema.Column{StudentProfilesColumns[10]},
			},
		},
	}

	// MaterialsColumns holds the columns for the "materials" table.
	MaterialsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "file_name", Type: field.TypeString, Size: 255},
		{Name: "file_type", Type: field.TypeString, Size: 16},
		{Name: "file_url", Type: field.TypeString, Size: 2147483647},
		{Name: "file_key", Type: field.TypeString, Size: 512},
		{Name: "file_size", Type: field.TypeInt64, Default: 0},
		{Name: "content_hash", Type: field.TypeBytes, Nullable: true},
		{Name: "uploaded_at", Type: field.TypeTime},
		{Name: "class_id", Type: field.TypeUUID},
	}
	MaterialsTable = &schema.Table{
		Name:       "materials",
		Columns:    MaterialsColumns,
		PrimaryKey: []*schema.Column{MaterialsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "materials_classes_materials",
				Columns:    []*schema.Column{MaterialsColumns[8]},
				RefColumns: []*schema.Column{ClassesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "material_class_id",
				Unique:  false,
				Columns: []*schema.Column{MaterialsColumns[8]},
			},
		},
	}

	// AdaptedMaterialsColumns holds the columns for the "adapted_materials" table.
	AdaptedMaterialsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID, Unique: true},
		{Name: "adapted_file_name", Type: field.TypeString, Size: 255},
		{Name: "adapted_file_url", Type: field.TypeString, Size: 2147483647},
		{Name: "adapted_file_key", Type: field.TypeString, Size: 512},
		{Name: "adapted_file_size", Type: field.TypeInt64, Default: 0},
		{Name: "outcome", Type: field.TypeString, Size: 16},
		{Name: "adapted_at", Type: field.TypeTime},
		{Name: "material_id", Type: field.TypeUUID},
		{Name: "profile_id", Type: field.TypeUUID},
	}
	AdaptedMaterialsTable = &schema.Table{
		Name:       "adapted_materials",
		Columns:    AdaptedMaterialsColumns,
		PrimaryKey: []*schema.Column{AdaptedMaterialsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "adapted_materials_materials_adaptations",
				Columns:    []*schema.Column{AdaptedMaterialsColumns[7]},
				RefColumns: []*schema.Column{MaterialsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "adapted_materials_student_profiles_adaptations",
				Columns:    []*schema.Column{AdaptedMaterialsColumns[8]},
				RefColumns: []*schema.Column{StudentProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "adaptedmaterial_material_id_adapted_at",
				Unique:  false,
				Columns: []*schema.Column{AdaptedMaterialsColumns[7], AdaptedMaterialsColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ClassesTable,
		StudentProfilesTable,
		MaterialsTable,
		AdaptedMaterialsTable,
	}
)

func init() {
	StudentProfilesTable.ForeignKeys[0].RefTable = ClassesTable
	MaterialsTable.ForeignKeys[0].RefTable = ClassesTable
	AdaptedMaterialsTable.ForeignKeys[0].RefTable = MaterialsTable
	AdaptedMaterialsTable.ForeignKeys[1].RefTable = StudentProfilesTable
}

// Migrate creates missing tables, columns and indexes. It never drops anything.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := schema.NewMigrate(db.drv)
	if err != nil {
		logger.Error("db.migrate.init_error", "error", err)
		return err
	}
	if err := m.Create(ctx, Tables...); err != nil {
		logger.Error("db.migrate.error", "dialect", db.dialect, "error", err)
		return err
	}
	logger.Info("db.migrate.ok", "dialect", db.dialect, "tables", len(Tables))
	return nil
}
