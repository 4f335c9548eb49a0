package rdb

// FieldOptions 配置文件中的字段声明
type FieldOptions struct {
	Name     string `cfg:"name" validate:"required"`
	Type     string `cfg:"type" validate:"required"`
	Elem     string `cfg:"elem"`
	Alias    string `cfg:"alias"`
	Required bool   `cfg:"required"`
	Default  any    `cfg:"default"`
}

// TableModelOptions 配置文件中的模型声明
type TableModelOptions struct {
	Table  string         `cfg:"table" validate:"required"`
	Fields []FieldOptions `cfg:"fields" validate:"dive"`
}

// NewTableModelWithOptions 根据配置构建模型，字段类型在建表时才检查
func NewTableModelWithOptions(options *TableModelOptions) (*TableModel, error) {
	model := &TableModel{Table: options.Table}
	for _, f := range options.Fields {
		model.Fields = append(model.Fields, FieldDefinition{
			Name:     f.Name,
			Type:     FieldType(f.Type),
			Elem:     FieldType(f.Elem),
			Alias:    f.Alias,
			Required: f.Required,
			Default:  f.Default,
		})
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}
