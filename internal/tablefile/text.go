// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package tablefile

import (
	"github.com/nuclio/errors"
	"github.com/vmihailenco/msgpack/v4"
	"gopkg.in/yaml.v3"
)

func marshalMsgpack(d Description) ([]byte, error) {
	data, err := msgpack.Marshal(&d)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to encode msgpack description")
	}
	return data, nil
}

func unmarshalMsgpack(data []byte) (Description, error) {
	var d Description
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return Description{}, errors.Wrap(err, "Failed to decode msgpack description")
	}
	return d, nil
}

func marshalYAML(d Description) ([]byte, error) {
	data, err := yaml.Marshal(&d)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to encode yaml description")
	}
	return data, nil
}

func unmarshalYAML(data []byte) (Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Description{}, errors.Wrap(err, "Failed to decode yaml description")
	}
	return d, nil
}
