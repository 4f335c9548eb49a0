package cfg

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/hatlonely/modelx/cfg/validator"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Load 读取配置文件到 object，格式由扩展名决定：yaml/yml、toml、json、ini
// 解码后依次应用 def 默认值与 validate 校验
func Load(path string, object any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s failed", path)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return errors.WithMessagef(LoadBytes(data, format, object), "load config %s", path)
}

// LoadBytes 按指定格式解析配置数据
func LoadBytes(data []byte, format string, object any) error {
	m, err := decode(data, format)
	if err != nil {
		return err
	}
	if err := ConvertTo(m, object); err != nil {
		return err
	}
	return Build(object)
}

// Build 对已经填充的配置对象应用默认值并校验
func Build(object any) error {
	if err := SetDefaults(object); err != nil {
		return errors.WithMessage(err, "set defaults failed")
	}
	return validator.ValidateStruct(object)
}

// ConvertTo 按 cfg tag 将通用 map 转换为结构体
func ConvertTo(data map[string]any, object any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "cfg",
		WeaklyTypedInput: true,
		Result:           object,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errors.Wrap(err, "create decoder failed")
	}
	if err := decoder.Decode(data); err != nil {
		return errors.Wrap(err, "decode config failed")
	}
	return nil
}

func decode(data []byte, format string) (map[string]any, error) {
	m := map[string]any{}
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "yaml.Unmarshal failed")
		}
	case "toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "toml.Unmarshal failed")
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "json decode failed")
		}
	case "ini":
		return decodeIni(data)
	default:
		return nil, errors.Errorf("unsupported config format: %q", format)
	}
	return m, nil
}

// decodeIni 默认分区的键放在顶层，[a.b] 分区展开为嵌套 map
func decodeIni(data []byte) (map[string]any, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "ini.Load failed")
	}

	m := map[string]any{}
	for _, section := range file.Sections() {
		target := m
		if section.Name() != ini.DefaultSection {
			for _, part := range strings.Split(section.Name(), ".") {
				child, ok := target[part].(map[string]any)
				if !ok {
					child = map[string]any{}
					target[part] = child
				}
				target = child
			}
		}
		for _, key := range section.Keys() {
			target[key.Name()] = key.Value()
		}
	}
	return m, nil
}
