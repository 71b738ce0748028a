package cmd

import (
	"github.com/spf13/pflag"
)

func bindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("could not bind flag " + flag.Name + ": " + err.Error())
	}
}
