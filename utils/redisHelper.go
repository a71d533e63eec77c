package utils

import (
	"fmt"
	"reflect"
	"time"

	"github.com/tjwells85/whs_backend/config"
)

func GetTypeName[T any]() string {
	var v T
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func GetCacheLifespan() time.Duration {
	return 6 * time.Hour
}

// StoreRedis caches one instance by id.
func StoreRedis[T any](obj any, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

// RetrieveRedis returns nil when the key does not exist.
func RetrieveRedis[T any](id int) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

func StoreRedisList[T any](obj any) error {
	key := GetTypeName[T]() + "List"
	return config.SetRedisObject(key, &obj, GetCacheLifespan())
}

func RetrieveRedisList[T any]() ([]*T, error) {
	key := GetTypeName[T]() + "List"
	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

func ClearRedisCache[T any](ids ...int) error {
	typeName := GetTypeName[T]()
	keys := []string{typeName + "List"}
	for _, id := range ids {
		keys = append(keys, typeName+":"+fmt.Sprint(id))
	}
	return config.RemoveRedisKey(keys...)
}
