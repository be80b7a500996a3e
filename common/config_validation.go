package common

import (
	"bytes"
	"encoding/json"

	jsonschema_generator "github.com/invopop/jsonschema"
	jsonschema_validator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sirupsen/logrus"
)

var siteConfigSchema *jsonschema_validator.Schema

func init() {
	defer func() {
		if r := recover(); r != nil {
			// Config validation is best-effort
			logrus.Warningf("Something went wrong creating config schema: %v", r)
		}
	}()

	r := &jsonschema_generator.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema, err := json.Marshal(r.Reflect(&SiteConfig{}))
	if err != nil {
		panic(err)
	}

	doc, err := jsonschema_validator.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		panic(err)
	}

	compiler := jsonschema_validator.NewCompiler()
	if err = compiler.AddResource("site_config_schema.json", doc); err != nil {
		panic(err)
	}
	siteConfigSchema = compiler.MustCompile("site_config_schema.json")
}

func Validate(config *SiteConfig) error {
	defer func() {
		if r := recover(); r != nil {
			// Config validation is best-effort
			logrus.Warningf("Something went wrong validating config: %v", r)
		}
	}()

	// Validation must be done on generic types so we re-unmarshal the config into an interface{}
	configString, err := json.Marshal(config)
	if err != nil {
		panic(err)
	}
	var jsonValue interface{}
	err = json.Unmarshal(configString, &jsonValue)
	if err != nil {
		panic(err)
	}

	return siteConfigSchema.Validate(jsonValue)
}
