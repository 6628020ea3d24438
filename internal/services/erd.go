package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"futurisys/attrition-api/internal/models"
)

type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
	Unique     bool
	Nullable   bool
}

type Table struct {
	Name    string
	Columns []Column
}

// Relation is a foreign key from Child.ChildColumn to Parent.ParentColumn.
type Relation struct {
	Parent       string
	ParentColumn string
	Child        string
	ChildColumn  string
}

type Schema struct {
	Tables    []Table
	Relations []Relation
}

// SchemaInspector reads the live database schema.
type SchemaInspector interface {
	Inspect(ctx context.Context) (*Schema, error)
}

type ERDService struct {
	inspector SchemaInspector
}

func NewERDService(inspector SchemaInspector) *ERDService {
	return &ERDService{inspector: inspector}
}

// Generate renders the schema as a Mermaid erDiagram inside a markdown document.
func (s *ERDService) Generate(ctx context.Context) (string, error) {
	sc, err := s.inspector.Inspect(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to inspect schema: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Entity relationship diagram\n\n")
	b.WriteString("```mermaid\nerDiagram\n")

	for _, t := range sc.Tables {
		fmt.Fprintf(&b, "    %s {\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "        %s %s", mermaidType(c.Type), c.Name)
			if key := columnKey(c); key != "" {
				fmt.Fprintf(&b, " %s", key)
			}
			if c.Nullable && !c.PrimaryKey {
				b.WriteString(` "nullable"`)
			}
			b.WriteString("\n")
		}
		b.WriteString("    }\n")
	}

	for _, r := range sc.Relations {
		fmt.Fprintf(&b, "    %s ||--o| %s : \"%s -> %s\"\n", r.Parent, r.Child, r.ChildColumn, r.ParentColumn)
	}
	b.WriteString("```\n")
	return b.String(), nil
}

func mermaidType(t string) string {
	t = strings.TrimSpace(strings.ToLower(t))
	if t == "" {
		return "unknown"
	}
	return strings.NewReplacer(" ", "_", "(", "_", ")", "", ",", "_").Replace(t)
}

func columnKey(c Column) string {
	switch {
	case c.PrimaryKey:
		return "PK"
	case c.Unique:
		return "UK"
	}
	return ""
}

type gormInspector struct {
	db     *gorm.DB
	models []any
}

// NewGormInspector inspects the tables backing the application models.
func NewGormInspector(db *gorm.DB) SchemaInspector {
	return &gormInspector{db: db, models: models.All()}
}

func (g *gormInspector) Inspect(ctx context.Context) (*Schema, error) {
	db := g.db.WithContext(ctx)
	migrator := db.Migrator()
	out := &Schema{}

	for _, model := range g.models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		if !migrator.HasTable(model) {
			continue
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", stmt.Schema.Table, err)
		}

		table := Table{Name: stmt.Schema.Table}
		for _, ct := range columnTypes {
			col := Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
			col.PrimaryKey, _ = ct.PrimaryKey()
			col.Unique, _ = ct.Unique()
			col.Nullable, _ = ct.Nullable()
			if field := stmt.Schema.LookUpField(col.Name); field != nil {
				col.PrimaryKey = col.PrimaryKey || field.PrimaryKey
				col.Unique = col.Unique || field.Unique || hasUniqueIndex(stmt.Schema, field)
			}
			table.Columns = append(table.Columns, col)
		}
		out.Tables = append(out.Tables, table)

		for _, rel := range stmt.Schema.Relationships.Relations {
			// gorm also registers back-references on the child schema
			if rel.Schema != stmt.Schema || (rel.Type != schema.HasOne && rel.Type != schema.HasMany) {
				continue
			}
			for _, ref := range rel.References {
				if ref.PrimaryKey == nil || ref.ForeignKey == nil {
					continue
				}
				out.Relations = append(out.Relations, Relation{
					Parent:       stmt.Schema.Table,
					ParentColumn: ref.PrimaryKey.DBName,
					Child:        rel.FieldSchema.Table,
					ChildColumn:  ref.ForeignKey.DBName,
				})
			}
		}
	}

	sort.Slice(out.Relations, func(i, j int) bool { return out.Relations[i].Child < out.Relations[j].Child })
	return out, nil
}

func hasUniqueIndex(s *schema.Schema, field *schema.Field) bool {
	for _, idx := range s.ParseIndexes() {
		if idx.Class != "UNIQUE" || len(idx.Fields) != 1 {
			continue
		}
		if idx.Fields[0].Field.DBName == field.DBName {
			return true
		}
	}
	return false
}
