package main

import (
	"strings"

	"github.com/hatlonely/modelx/cfg"
	"github.com/hatlonely/modelx/log/logger"
	"github.com/hatlonely/modelx/rdb"
	"github.com/pkg/errors"
)

type Options struct {
	Store   rdb.SQLOptions          `cfg:"store"`
	Log     logger.SLogOptions      `cfg:"log"`
	Observe rdb.ObserveOptions      `cfg:"observe"`
	Models  []rdb.TableModelOptions `cfg:"models" validate:"dive"`
}

// loadOptions 读取配置文件，path 为空时只使用默认值
func loadOptions(path string) (*Options, error) {
	options := &Options{}
	if path == "" {
		if err := cfg.Build(options); err != nil {
			return nil, errors.WithMessage(err, "build default options failed")
		}
		return options, nil
	}
	if err := cfg.Load(path, options); err != nil {
		return nil, err
	}
	return options, nil
}

// userModel 内置的演示模型
func userModel() *rdb.TableModel {
	return rdb.NewTableModel("User",
		rdb.String("name", rdb.Required()),
		rdb.Int("age", rdb.Required()),
		rdb.List("tags", rdb.FieldTypeString, rdb.Default([]string{})),
		rdb.List("seq", rdb.FieldTypeInt, rdb.Default([]int{})),
	)
}

// models 返回配置中声明的模型，User 未声明时使用内置模型
func (o *Options) models() (map[string]*rdb.TableModel, error) {
	models := map[string]*rdb.TableModel{}
	for i := range o.Models {
		model, err := rdb.NewTableModelWithOptions(&o.Models[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "models[%d]", i)
		}
		models[strings.ToLower(model.Table)] = model
	}
	if _, ok := models["user"]; !ok {
		models["user"] = userModel()
	}
	return models, nil
}

func (o *Options) model(name string) (*rdb.TableModel, error) {
	models, err := o.models()
	if err != nil {
		return nil, err
	}
	model, ok := models[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown model %q", name)
	}
	return model, nil
}
