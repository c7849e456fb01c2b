package scramkafka

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/config"
)

func NewSaramaConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	conf := sarama.NewConfig()

	if cfg.Version != "" {
		version, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "parse kafka version %q", cfg.Version)
		}
		conf.Version = version
	}

	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Retry.Max = 3

	if cfg.SASL {
		conf.Net.SASL.Enable = true
		conf.Net.SASL.Handshake = true
		conf.Net.SASL.User = cfg.Username
		conf.Net.SASL.Password = cfg.Password
		if cfg.Strategy == "sha256" {
			conf.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient { return &XDGSCRAMClient{HashGeneratorFcn: SHA256} }
			conf.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		} else {
			conf.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient { return &XDGSCRAMClient{HashGeneratorFcn: SHA512} }
			conf.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		}
	}

	if cfg.TLS {
		tlsConfig, err := newTLSConfig(cfg.CertPath)
		if err != nil {
			return nil, err
		}
		conf.Net.TLS.Enable = true
		conf.Net.TLS.Config = tlsConfig
	}

	return conf, nil
}

func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	conf, err := NewSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, conf)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka sync producer")
	}
	return producer, nil
}

func newTLSConfig(certPath string) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if certPath == "" {
		return tlsConfig, nil
	}
	pem, err := os.ReadFile(certPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read kafka ca %s", certPath)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Errorf("no certificates found in %s", certPath)
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}
