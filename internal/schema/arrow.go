package schema

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
)

// Schema is the schema representation consumed by the Parquet read/write
// path (internal/storage/parquet). It wraps a TableSchema so the catalog's
// schema-evolution bookkeeping and the physical write path share one
// column definition instead of drifting apart.
type Schema struct {
	*TableSchema
}

// NewSchema wraps a TableSchema for use by the Parquet reader/writer.
func NewSchema(table *TableSchema) *Schema {
	return &Schema{TableSchema: table}
}

// ToArrowSchema converts the table schema into an Arrow schema.
func (s *Schema) ToArrowSchema() (*arrow.Schema, error) {
	if s == nil || s.TableSchema == nil {
		return nil, fmt.Errorf("schema is nil")
	}

	fields := make([]arrow.Field, 0, len(s.Columns))
	for _, col := range s.Columns {
		arrowType, err := dataTypeToArrow(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		fields = append(fields, arrow.Field{
			Name:     col.Name,
			Type:     arrowType,
			Nullable: col.Nullable,
		})
	}

	return arrow.NewSchema(fields, nil), nil
}

func dataTypeToArrow(t DataType) (arrow.DataType, error) {
	switch t {
	case TypeString, TypeUUID:
		return arrow.BinaryTypes.String, nil
	case TypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case TypeBytes:
		return arrow.BinaryTypes.Binary, nil
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns, nil
	case TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	default:
		return arrow.BinaryTypes.String, nil
	}
}
