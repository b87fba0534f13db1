package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func testStore() *Store {
	return NewStore(StoreConfig{
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "postline",
	})
}

func TestPresignedPutURL_ErrorFromConfigLoad(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, _, err := testStore().PresignedPutURL(context.Background(), "org1")
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("want load-fail, got %v", err)
	}
}

func TestPresignedGetURL_ErrorFromConfigLoad(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := testStore().PresignedGetURL(context.Background(), "any-key")
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("want load-fail, got %v", err)
	}
}

func TestPresignedPutURL_Success(t *testing.T) {
	origPut := presignPutObject
	defer func() { presignPutObject = origPut }()

	var gotBucket, gotKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket = *in.Bucket
		gotKey = *in.Key
		return &v4.PresignedHTTPRequest{URL: "http://signed/put"}, nil
	}

	key, url, err := testStore().PresignedPutURL(context.Background(), "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://signed/put" {
		t.Fatalf("unexpected url: %s", url)
	}
	if gotBucket != "postline" {
		t.Fatalf("unexpected bucket: %s", gotBucket)
	}
	if key != gotKey || !strings.HasPrefix(key, "orgs/org1/") {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestPresignedGetURL_Success(t *testing.T) {
	origGet := presignGetObject
	defer func() { presignGetObject = origGet }()

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != "orgs/org1/k" {
			t.Fatalf("unexpected key: %s", *in.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed/get"}, nil
	}

	url, err := testStore().PresignedGetURL(context.Background(), "orgs/org1/k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://signed/get" {
		t.Fatalf("unexpected url: %s", url)
	}
}

func TestPresignedPutURL_PresignError(t *testing.T) {
	origPut := presignPutObject
	defer func() { presignPutObject = origPut }()

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign-fail")
	}

	_, _, err := testStore().PresignedPutURL(context.Background(), "org1")
	if err == nil || err.Error() != "sign-fail" {
		t.Fatalf("want sign-fail, got %v", err)
	}
}
