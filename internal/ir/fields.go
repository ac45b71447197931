package ir

// Field tokens used in metadata relation headers. They follow the column
// names of the OLAP schema rowsets (catalog, cube, dimension, ...).
const (
	FieldCatalogName   = "?CATALOG_NAME"
	FieldSchemaName    = "?SCHEMA_NAME"
	FieldCubeName      = "?CUBE_NAME"
	FieldCubeType      = "?CUBE_TYPE"
	FieldCubeCaption   = "?CUBE_CAPTION"
	FieldDescription   = "?DESCRIPTION"
	FieldDataType      = "?DATA_TYPE"
	FieldMeasureUnique = "?MEASURE_UNIQUE_NAME"
	FieldMeasureName   = "?MEASURE_NAME"
	FieldMeasureCap    = "?MEASURE_CAPTION"
	FieldMeasureAgg    = "?MEASURE_AGGREGATOR"
	FieldExpression    = "?EXPRESSION"

	FieldDimensionUnique  = "?DIMENSION_UNIQUE_NAME"
	FieldDimensionName    = "?DIMENSION_NAME"
	FieldDimensionCaption = "?DIMENSION_CAPTION"
	FieldDimensionOrdinal = "?DIMENSION_ORDINAL"
	FieldDimensionType    = "?DIMENSION_TYPE"

	FieldHierarchyUnique   = "?HIERARCHY_UNIQUE_NAME"
	FieldHierarchyName     = "?HIERARCHY_NAME"
	FieldHierarchyCaption  = "?HIERARCHY_CAPTION"
	FieldHierarchyMaxLevel = "?HIERARCHY_MAX_LEVEL_NUMBER"

	FieldLevelUnique      = "?LEVEL_UNIQUE_NAME"
	FieldLevelName        = "?LEVEL_NAME"
	FieldLevelCaption     = "?LEVEL_CAPTION"
	FieldLevelNumber      = "?LEVEL_NUMBER"
	FieldLevelCardinality = "?LEVEL_CARDINALITY"
	FieldLevelType        = "?LEVEL_TYPE"

	FieldMemberUnique  = "?MEMBER_UNIQUE_NAME"
	FieldMemberName    = "?MEMBER_NAME"
	FieldMemberCaption = "?MEMBER_CAPTION"
	FieldMemberType    = "?MEMBER_TYPE"
	FieldParentUnique  = "?PARENT_UNIQUE_NAME"
	FieldParentLevel   = "?PARENT_LEVEL"
)

// Canonical headers of the six metadata relations.
var (
	CubesHeader = Header{
		FieldCatalogName, FieldSchemaName, FieldCubeName,
		FieldCubeType, FieldCubeCaption, FieldDescription,
	}

	MeasuresHeader = Header{
		FieldCatalogName, FieldSchemaName, FieldCubeName,
		FieldMeasureUnique, FieldMeasureName, FieldMeasureCap,
		FieldDataType, FieldMeasureAgg, FieldExpression,
	}

	DimensionsHeader = Header{
		FieldCatalogName, FieldSchemaName, FieldCubeName,
		FieldDimensionName, FieldDimensionUnique, FieldDimensionCaption,
		FieldDimensionOrdinal, FieldDimensionType, FieldDescription,
	}

	HierarchiesHeader = Header{
		FieldCatalogName, FieldSchemaName, FieldCubeName,
		FieldDimensionUnique, FieldHierarchyUnique, FieldHierarchyName,
		FieldHierarchyCaption, FieldDescription, FieldHierarchyMaxLevel,
	}

	LevelsHeader = Header{
		FieldCatalogName, FieldSchemaName, FieldCubeName,
		FieldDimensionUnique, FieldHierarchyUnique, FieldLevelUnique,
		FieldLevelCaption, FieldLevelName, FieldDescription,
		FieldLevelNumber, FieldLevelCardinality, FieldLevelType,
	}

	MembersHeader = Header{
		FieldCatalogName, FieldSchemaName, FieldCubeName,
		FieldDimensionUnique, FieldHierarchyUnique, FieldLevelUnique,
		FieldLevelNumber, FieldMemberName, FieldMemberUnique,
		FieldMemberCaption, FieldMemberType, FieldParentUnique,
		FieldParentLevel,
	}
)
